package models

// Status is the lifecycle position of a Request.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusOpen      Status = "Open"
	StatusDecided   Status = "Decided"
	StatusAnswered  Status = "Answered"
	StatusCompleted Status = "Completed"
	StatusError     Status = "Error"
)

var statusRanks = map[Status]int{
	StatusDraft:     0,
	StatusOpen:      1,
	StatusDecided:   2,
	StatusAnswered:  3,
	StatusCompleted: 3,
	StatusError:     4,
}

// allowedTransitions lists, per target status, the one status it may be
// entered from. Error is handled separately.
var allowedTransitions = map[Status]Status{
	StatusOpen:      StatusDraft,
	StatusDecided:   StatusOpen,
	StatusAnswered:  StatusDecided,
	StatusCompleted: StatusOpen,
}

func (s Status) IsValid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Rank orders statuses; transitions never decrease it.
func (s Status) Rank() int {
	return statusRanks[s]
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusAnswered || s == StatusCompleted || s == StatusError
}

// CanTransitionTo reports whether next may follow s.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusError {
		return s.IsValid() && !s.IsTerminal()
	}
	from, ok := allowedTransitions[next]
	return ok && from == s
}

func (s Status) String() string {
	return string(s)
}
