package game

import "time"

// User is a stable reference to a simulation account.
//
// ID is the account's stable identifier (survives renames); Name is the
// in-game display name at the time the action was raised.
type User struct {
	ID   string
	Name string
}

// Action is the sealed union of simulation actions the relay can observe.
//
// Adding a variant means adding a struct here plus one case in the
// dispatcher's type switch; unknown variants are ignored, never an error.
type Action interface {
	isAction()
}

// ElectionMove distinguishes the two sub-states of JoinOrLeaveElection.
type ElectionMove int

const (
	EnteredElection ElectionMove = iota
	LeftElection
)

// DemographicMove distinguishes the two sub-states of DemographicChange.
type DemographicMove int

const (
	EnteredDemographic DemographicMove = iota
	LeftDemographic
)

// LandMove distinguishes the two sub-states of ClaimOrUnclaimLand.
type LandMove int

const (
	ClaimedLand LandMove = iota
	UnclaimedLand
)

// ChatSent is a chat message. Only messages tagged with the public
// general tag are relayed.
type ChatSent struct {
	Citizen User
	Tag     string
	Message string
}

// StartElection announces a new election. Elections without an elected
// title are procedural and produce no notification.
type StartElection struct {
	Citizen  User
	Title    string
	TimeLeft time.Duration
}

// JoinOrLeaveElection covers a candidate entering or withdrawing.
// Platform is the candidate's stated platform; only meaningful on entry.
type JoinOrLeaveElection struct {
	Citizen  User
	Move     ElectionMove
	Position string
	Platform string
}

// WonElection announces the winner of a finished election.
type WonElection struct {
	Citizen  User
	Position string
}

// DemographicChange covers a citizen entering or leaving a demographic.
// Description is the demographic's description; only used on entry.
type DemographicChange struct {
	Citizen     User
	Move        DemographicMove
	Demographic string
	Description string
}

// PropertyTransfer records a deed changing hands. Owner fields are bare
// display names: the simulation raises them as text, not references.
type PropertyTransfer struct {
	Citizen      User
	CurrentOwner string
	NewOwner     string
}

// ClaimOrUnclaimLand covers claiming or abandoning a plot.
type ClaimOrUnclaimLand struct {
	Citizen  User
	Move     LandMove
	Location string
}

// ReceiveGovernmentFunds records a treasury payout for government work.
type ReceiveGovernmentFunds struct {
	Citizen  User
	Amount   float64
	Currency string
}

// PostedContract announces a new contract. The contract body is not on
// the action; the dispatcher recovers it from the contract board.
type PostedContract struct {
	Client   User
	Amount   float64
	Currency string
}

// PostedWorkParty announces a new work party. Like PostedContract, the
// description is recovered from the work-party board.
type PostedWorkParty struct {
	Client   User
	Amount   float64
	Currency string
}

// GainSpecialty records a citizen unlocking a specialty.
type GainSpecialty struct {
	Citizen   User
	Specialty string
}

// GainProfession records a citizen unlocking a profession.
// Deliberately never relayed (too noisy alongside GainSpecialty).
type GainProfession struct {
	Citizen    User
	Profession string
}

// CreateWorkOrder records a new crafting work order.
type CreateWorkOrder struct {
	Citizen User
	Order   string
}

// AddToWorkOrder records materials contributed to a work order.
type AddToWorkOrder struct {
	Citizen User
	Items   int
	Item    string
	Order   string
}

// LaborWorkOrder records labor performed on a work order.
type LaborWorkOrder struct {
	Citizen User
	Labor   float64
	Order   string
}

// UserLogin and UserLogout are session signals. They travel the same
// feed as actions but are delivered through the dispatcher's dedicated
// hooks, not the classification switch.
type UserLogin struct {
	User User
}

type UserLogout struct {
	User User
}

func (ChatSent) isAction()               {}
func (StartElection) isAction()          {}
func (JoinOrLeaveElection) isAction()    {}
func (WonElection) isAction()            {}
func (DemographicChange) isAction()      {}
func (PropertyTransfer) isAction()       {}
func (ClaimOrUnclaimLand) isAction()     {}
func (ReceiveGovernmentFunds) isAction() {}
func (PostedContract) isAction()         {}
func (PostedWorkParty) isAction()        {}
func (GainSpecialty) isAction()          {}
func (GainProfession) isAction()         {}
func (CreateWorkOrder) isAction()        {}
func (AddToWorkOrder) isAction()         {}
func (LaborWorkOrder) isAction()         {}
func (UserLogin) isAction()              {}
func (UserLogout) isAction()             {}

// ChatTagGeneral is the public chat tag mirrored to the general channel.
const ChatTagGeneral = "general"
