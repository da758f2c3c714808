package lifecycle

import "fmt"

// Policy is the set of guard points consulted by the ledger and the asset
// registry. Swapping the Policy changes how strict the machine is without
// touching any call site.
type Policy interface {
	// CheckAllocate runs before a laptop is allocated. openAllocations is the
	// number of active allocation records already referencing the laptop.
	CheckAllocate(current Status, openAllocations int64) error
	// CheckReturn runs before an active allocation is closed.
	CheckReturn(current Status) error
	// CheckChange runs before an operator sets a status directly.
	CheckChange(from, to Status) error
}

// Permissive reproduces the historical behavior: every transition is allowed,
// including allocating a laptop that is already allocated and moving out of
// Retired or Lost.
type Permissive struct{}

func (Permissive) CheckAllocate(Status, int64) error { return nil }
func (Permissive) CheckReturn(Status) error          { return nil }
func (Permissive) CheckChange(Status, Status) error  { return nil }

// Strict refuses double-booking and keeps Allocated reachable only through the
// ledger.
type Strict struct{}

func (Strict) CheckAllocate(current Status, open int64) error {
	if current == Allocated || open > 0 {
		return fmt.Errorf("%w: laptop is already allocated", ErrIllegalTransition)
	}
	return nil
}

func (Strict) CheckReturn(Status) error { return nil }

func (Strict) CheckChange(from, to Status) error {
	if to == Allocated {
		return fmt.Errorf("%w: %s -> %s must go through an allocation", ErrIllegalTransition, from, to)
	}
	if from == Allocated && to != Allocated {
		return fmt.Errorf("%w: %s -> %s must go through a return", ErrIllegalTransition, from, to)
	}
	return nil
}

// PolicyFor picks the guard set from the STRICT_ALLOCATION switch.
func PolicyFor(strict bool) Policy {
	if strict {
		return Strict{}
	}
	return Permissive{}
}

// Event is a ledger-driven lifecycle event.
type Event int

const (
	EventAllocate Event = iota
	EventReturn
)

// Target is the status an event moves a laptop into.
func Target(e Event) Status {
	if e == EventAllocate {
		return Allocated
	}
	return Available
}
