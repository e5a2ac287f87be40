package order

import "fmt"

// Status is the fulfillment state of an order.
type Status string

const (
	StatusNew        Status = "new"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// transitions lists the moves the admin action set exposes: single steps
// forward plus the explicit undo from completed back to processing. There is
// deliberately no new→completed shortcut and no way back to new.
var transitions = map[Status]Status{
	StatusNew:        StatusProcessing,
	StatusProcessing: StatusCompleted,
	StatusCompleted:  StatusProcessing,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is an allowed
// single-step transition.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s] == next && next != ""
}

// ParseStatus converts a string into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}
