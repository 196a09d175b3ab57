package domain

import "time"

// ChangeType identifies the kind of edit a change proposes.
type ChangeType string

const (
	// ChangeInsertion adds new text; Original is empty.
	ChangeInsertion ChangeType = "insertion"

	// ChangeDeletion removes existing text; Replacement is empty.
	ChangeDeletion ChangeType = "deletion"

	// ChangeReplacement swaps Original for Replacement; neither is empty.
	ChangeReplacement ChangeType = "replacement"
)

// ChangeStatus is the review decision for a single change.
type ChangeStatus string

const (
	// StatusPending means the change has not been reviewed yet.
	StatusPending ChangeStatus = "pending"

	// StatusAccepted means the change will be applied.
	StatusAccepted ChangeStatus = "accepted"

	// StatusDeclined means the change will be ignored.
	StatusDeclined ChangeStatus = "declined"
)

// Change is one atomic edit proposal within a redline session.
// Changes are created in bulk when an AI proposal is parsed; afterwards
// only Status mutates, and only through the session service.
type Change struct {
	// ID is unique within the session.
	ID string

	// Type is insertion, deletion, or replacement.
	Type ChangeType

	// Original is the text being removed or replaced. Empty for insertions.
	Original string

	// Replacement is the text being added. Empty for deletions.
	Replacement string

	// Position is the proposal order (0-based), not a text offset.
	Position int

	// Status is the current review decision.
	Status ChangeStatus

	// Context is the AI's human-readable rationale, if any.
	Context string
}

// Valid reports whether the change satisfies the type invariants:
// at most one of Original/Replacement may be empty, and a replacement
// must carry both sides.
func (c Change) Valid() bool {
	switch c.Type {
	case ChangeInsertion:
		return c.Replacement != ""
	case ChangeDeletion:
		return c.Original != ""
	case ChangeReplacement:
		return c.Original != "" && c.Replacement != ""
	default:
		return false
	}
}

// RedlineResult is the aggregate for one redline session.
// OriginalText and EditedText are immutable once created; Changes is
// fixed in length and order, and only each Change's Status may mutate.
type RedlineResult struct {
	// ID is the session identifier.
	ID string

	// FileName is the source document's filename.
	FileName string

	// OriginalText is the verbatim extracted source text.
	OriginalText string

	// EditedText is the AI's fully-edited version with every proposal applied.
	EditedText string

	// Changes is the ordered list of edit proposals.
	Changes []Change

	// CreatedAt is when the session was created.
	CreatedAt time.Time
}

// ChangeByID returns the change with the given ID, or nil.
func (r *RedlineResult) ChangeByID(id string) *Change {
	for i := range r.Changes {
		if r.Changes[i].ID == id {
			return &r.Changes[i]
		}
	}
	return nil
}

// Counts returns the number of pending, accepted, and declined changes.
func (r *RedlineResult) Counts() (pending, accepted, declined int) {
	for _, c := range r.Changes {
		switch c.Status {
		case StatusAccepted:
			accepted++
		case StatusDeclined:
			declined++
		default:
			pending++
		}
	}
	return pending, accepted, declined
}

// AllAccepted reports whether every change is accepted.
// False when the session has no changes.
func (r *RedlineResult) AllAccepted() bool {
	if len(r.Changes) == 0 {
		return false
	}
	for _, c := range r.Changes {
		if c.Status != StatusAccepted {
			return false
		}
	}
	return true
}

// NoneAccepted reports whether no change is accepted (all declined or pending).
func (r *RedlineResult) NoneAccepted() bool {
	for _, c := range r.Changes {
		if c.Status == StatusAccepted {
			return false
		}
	}
	return true
}
