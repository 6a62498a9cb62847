package booking

// transitions lists every status change the ledger accepts.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may change to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further change is possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Blocks reports whether a booking in this status holds its dates.
func (s Status) Blocks() bool {
	return s == StatusPending || s == StatusConfirmed
}

// blockingStatuses is the SQL-side mirror of Blocks.
var blockingStatuses = []string{string(StatusPending), string(StatusConfirmed)}
