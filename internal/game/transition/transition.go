// Package transition implements the two-phase arm/confirm machine that gates
// encounters and map swaps on animation playback. The simulation arms a
// payload, the rendering layer later confirms it, and the store clears it
// when the transition completes.
package transition

import "fmt"

// State is the machine's phase.
type State string

// Machine states.
const (
	StateIdle      State = "idle"
	StateArmed     State = "armed"
	StateConfirmed State = "confirmed"
)

// Machine is a two-phase commit gate carrying a payload of type T while
// armed. Not safe for concurrent use; the store serialises access.
type Machine[T any] struct {
	state   State
	payload T
}

// New returns an idle machine.
func New[T any]() *Machine[T] {
	return &Machine[T]{state: StateIdle}
}

// State returns the current phase.
func (m *Machine[T]) State() State {
	return m.state
}

// Armed reports whether a payload is waiting for confirmation.
func (m *Machine[T]) Armed() bool {
	return m.state == StateArmed
}

// Arm stores a payload and moves idle -> armed.
//
// Postcondition: Payload() returns (payload, true), or an error is returned
// and the machine is unchanged.
func (m *Machine[T]) Arm(payload T) error {
	if m.state != StateIdle {
		return fmt.Errorf("transition: cannot arm from %s state", m.state)
	}
	m.state = StateArmed
	m.payload = payload
	return nil
}

// Confirm moves armed -> confirmed and returns the payload.
//
// Postcondition: State() == StateConfirmed, or an error is returned and the
// machine is unchanged.
func (m *Machine[T]) Confirm() (T, error) {
	var zero T
	if m.state != StateArmed {
		return zero, fmt.Errorf("transition: cannot confirm from %s state", m.state)
	}
	m.state = StateConfirmed
	return m.payload, nil
}

// Payload returns the carried payload while armed or confirmed.
func (m *Machine[T]) Payload() (T, bool) {
	var zero T
	if m.state == StateIdle {
		return zero, false
	}
	return m.payload, true
}

// Clear unconditionally resets to idle, dropping any payload. Used both at
// transition completion and by full state resets such as returning to title.
//
// Postcondition: State() == StateIdle.
func (m *Machine[T]) Clear() {
	var zero T
	m.state = StateIdle
	m.payload = zero
}
