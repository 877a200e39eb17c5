package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Feed record kinds. Event kinds decode to an Action; board.* and
// roster.* kinds are state upserts the host pump applies before later
// events query them.
const (
	KindChatSent         = "chat.sent"
	KindElectionStarted  = "election.started"
	KindElectionEntered  = "election.entered"
	KindElectionLeft     = "election.left"
	KindElectionWon      = "election.won"
	KindDemographicIn    = "demographic.entered"
	KindDemographicOut   = "demographic.left"
	KindPropertyTransfer = "property.transferred"
	KindLandClaimed      = "land.claimed"
	KindLandUnclaimed    = "land.unclaimed"
	KindGovernmentFunds  = "funds.government"
	KindContractPosted   = "contract.posted"
	KindWorkPartyPosted  = "workparty.posted"
	KindSpecialtyGained  = "specialty.gained"
	KindProfessionGained = "profession.gained"
	KindWorkOrderCreated = "workorder.created"
	KindWorkOrderAdded   = "workorder.contributed"
	KindWorkOrderLabored = "workorder.labored"
	KindUserLogin        = "user.login"
	KindUserLogout       = "user.logout"

	KindBoardContract         = "board.contract"
	KindBoardContractRemoved  = "board.contract_removed"
	KindBoardWorkParty        = "board.workparty"
	KindBoardWorkPartyRemoved = "board.workparty_removed"
	KindRosterUser            = "roster.user"
)

// Record is one decoded feed line. Exactly one of the typed fields is
// set for known kinds; all are zero for unknown kinds (which the pump
// skips, mirroring the dispatcher's ignore-unknown rule).
type Record struct {
	Kind string

	Action Action

	Contract        *Contract
	RemovedContract string
	WorkParty       *WorkParty
	RemovedParty    string
	User            *User
}

type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type wireUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (w wireUser) user() User { return User{ID: w.ID, Name: w.Name} }

type wireChat struct {
	Citizen wireUser `json:"citizen"`
	Tag     string   `json:"tag"`
	Message string   `json:"message"`
}

type wireElectionStart struct {
	Citizen  wireUser `json:"citizen"`
	Title    string   `json:"title"`
	TimeLeft float64  `json:"time_left_seconds"`
}

type wireElectionMove struct {
	Citizen  wireUser `json:"citizen"`
	Position string   `json:"position"`
	Platform string   `json:"platform,omitempty"`
}

type wireDemographic struct {
	Citizen     wireUser `json:"citizen"`
	Demographic string   `json:"demographic"`
	Description string   `json:"description,omitempty"`
}

type wireTransfer struct {
	Citizen      wireUser `json:"citizen"`
	CurrentOwner string   `json:"current_owner"`
	NewOwner     string   `json:"new_owner"`
}

type wireLand struct {
	Citizen  wireUser `json:"citizen"`
	Location string   `json:"location"`
}

type wireFunds struct {
	Citizen  wireUser `json:"citizen"`
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
}

type wirePosting struct {
	Client   wireUser `json:"client"`
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
}

type wireSpecialty struct {
	Citizen   wireUser `json:"citizen"`
	Specialty string   `json:"specialty"`
}

type wireProfession struct {
	Citizen    wireUser `json:"citizen"`
	Profession string   `json:"profession"`
}

type wireWorkOrder struct {
	Citizen wireUser `json:"citizen"`
	Order   string   `json:"order"`
	Items   int      `json:"items,omitempty"`
	Item    string   `json:"item,omitempty"`
	Labor   float64  `json:"labor,omitempty"`
}

type wireContract struct {
	ID      string    `json:"id"`
	Client  string    `json:"client"`
	Clauses string    `json:"clauses"`
	Created time.Time `json:"created"`
}

type wireWorkParty struct {
	ID          string    `json:"id"`
	Creator     string    `json:"creator"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

type wireRemoval struct {
	ID string `json:"id"`
}

// Decode parses one NDJSON feed line.
//
// Unknown kinds decode to a Record with only Kind set; malformed JSON is
// an error.
func Decode(line []byte) (Record, error) {
	var env envelope
	dec := json.NewDecoder(bytes.NewReader(line))
	if err := dec.Decode(&env); err != nil {
		return Record{}, fmt.Errorf("decode feed line: %w", err)
	}
	if env.Kind == "" {
		return Record{}, fmt.Errorf("decode feed line: missing kind")
	}

	rec := Record{Kind: env.Kind}
	unpack := func(v any) error {
		if len(env.Data) == 0 {
			return fmt.Errorf("decode %s: missing data", env.Kind)
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("decode %s: %w", env.Kind, err)
		}
		return nil
	}

	switch env.Kind {
	case KindChatSent:
		var w wireChat
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = ChatSent{Citizen: w.Citizen.user(), Tag: w.Tag, Message: w.Message}
	case KindElectionStarted:
		var w wireElectionStart
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = StartElection{
			Citizen:  w.Citizen.user(),
			Title:    w.Title,
			TimeLeft: time.Duration(w.TimeLeft * float64(time.Second)),
		}
	case KindElectionEntered, KindElectionLeft:
		var w wireElectionMove
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		move := EnteredElection
		if env.Kind == KindElectionLeft {
			move = LeftElection
		}
		rec.Action = JoinOrLeaveElection{Citizen: w.Citizen.user(), Move: move, Position: w.Position, Platform: w.Platform}
	case KindElectionWon:
		var w wireElectionMove
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = WonElection{Citizen: w.Citizen.user(), Position: w.Position}
	case KindDemographicIn, KindDemographicOut:
		var w wireDemographic
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		move := EnteredDemographic
		if env.Kind == KindDemographicOut {
			move = LeftDemographic
		}
		rec.Action = DemographicChange{Citizen: w.Citizen.user(), Move: move, Demographic: w.Demographic, Description: w.Description}
	case KindPropertyTransfer:
		var w wireTransfer
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = PropertyTransfer{Citizen: w.Citizen.user(), CurrentOwner: w.CurrentOwner, NewOwner: w.NewOwner}
	case KindLandClaimed, KindLandUnclaimed:
		var w wireLand
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		move := ClaimedLand
		if env.Kind == KindLandUnclaimed {
			move = UnclaimedLand
		}
		rec.Action = ClaimOrUnclaimLand{Citizen: w.Citizen.user(), Move: move, Location: w.Location}
	case KindGovernmentFunds:
		var w wireFunds
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = ReceiveGovernmentFunds{Citizen: w.Citizen.user(), Amount: w.Amount, Currency: w.Currency}
	case KindContractPosted:
		var w wirePosting
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = PostedContract{Client: w.Client.user(), Amount: w.Amount, Currency: w.Currency}
	case KindWorkPartyPosted:
		var w wirePosting
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = PostedWorkParty{Client: w.Client.user(), Amount: w.Amount, Currency: w.Currency}
	case KindSpecialtyGained:
		var w wireSpecialty
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = GainSpecialty{Citizen: w.Citizen.user(), Specialty: w.Specialty}
	case KindProfessionGained:
		var w wireProfession
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = GainProfession{Citizen: w.Citizen.user(), Profession: w.Profession}
	case KindWorkOrderCreated:
		var w wireWorkOrder
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = CreateWorkOrder{Citizen: w.Citizen.user(), Order: w.Order}
	case KindWorkOrderAdded:
		var w wireWorkOrder
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = AddToWorkOrder{Citizen: w.Citizen.user(), Items: w.Items, Item: w.Item, Order: w.Order}
	case KindWorkOrderLabored:
		var w wireWorkOrder
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = LaborWorkOrder{Citizen: w.Citizen.user(), Labor: w.Labor, Order: w.Order}
	case KindUserLogin:
		var w wireUser
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = UserLogin{User: w.user()}
	case KindUserLogout:
		var w wireUser
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Action = UserLogout{User: w.user()}
	case KindBoardContract:
		var w wireContract
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.Contract = &Contract{ID: w.ID, Client: w.Client, Clauses: w.Clauses, Created: w.Created}
	case KindBoardContractRemoved:
		var w wireRemoval
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.RemovedContract = w.ID
	case KindBoardWorkParty:
		var w wireWorkParty
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.WorkParty = &WorkParty{ID: w.ID, Creator: w.Creator, Description: w.Description, Created: w.Created}
	case KindBoardWorkPartyRemoved:
		var w wireRemoval
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		rec.RemovedParty = w.ID
	case KindRosterUser:
		var w wireUser
		if err := unpack(&w); err != nil {
			return Record{}, err
		}
		u := w.user()
		rec.User = &u
	default:
		// Unknown kind: skipped by the pump.
	}
	return rec, nil
}
