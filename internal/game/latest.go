package game

import (
	"errors"
	"time"
)

// ErrNoMatch is returned when a latest-entry lookup finds nothing.
//
// The posted-contract and posted-work-party actions are raised after the
// entity has been inserted into its board, so a miss means that ordering
// assumption broke. Callers propagate it rather than guessing.
var ErrNoMatch = errors.New("no matching entry")

// LatestCreated returns the item with the maximum creation timestamp.
// Ties keep the earlier list entry.
func LatestCreated[T any](items []T, created func(T) time.Time) (T, error) {
	var best T
	if len(items) == 0 {
		return best, ErrNoMatch
	}
	best = items[0]
	bestAt := created(items[0])
	for _, it := range items[1:] {
		if at := created(it); at.After(bestAt) {
			best, bestAt = it, at
		}
	}
	return best, nil
}

// LatestContract returns the newest live contract posted by client.
func LatestContract(board ContractBoard, client string) (Contract, error) {
	return LatestCreated(board.ByClient(client), func(c Contract) time.Time { return c.Created })
}

// LatestWorkParty returns the newest live work party created by creator.
func LatestWorkParty(board WorkPartyBoard, creator string) (WorkParty, error) {
	return LatestCreated(board.ByCreator(creator), func(w WorkParty) time.Time { return w.Created })
}
