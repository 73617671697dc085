package bpfarray

import "fmt"

// ErrInvalidDef is returned when a descriptor fails validation before
// it reaches the loader.
type ErrInvalidDef struct {
	Field  string
	Reason string
}

func (e ErrInvalidDef) Error() string {
	return fmt.Sprintf("invalid map def: %s: %s", e.Field, e.Reason)
}

// ErrMapExists is returned when attempting to create a map under a
// name that is already managed.
type ErrMapExists struct {
	Name string
}

func (e ErrMapExists) Error() string {
	return fmt.Sprintf("map %q is already managed", e.Name)
}

// ErrMapNotManaged is returned when attempting to operate on a map
// that is not in the manager's registry.
type ErrMapNotManaged struct {
	Name string
}

func (e ErrMapNotManaged) Error() string {
	return fmt.Sprintf("map %q is not managed", e.Name)
}

// ErrMapNotOpen is returned when an operation needs a live kernel
// handle for a map that is registered but not open in this process.
type ErrMapNotOpen struct {
	Name string
}

func (e ErrMapNotOpen) Error() string {
	return fmt.Sprintf("map %q is managed but not open in this process", e.Name)
}

// ErrPinMismatch is returned when a pinned map reused by name does
// not match the descriptor that declared it.
type ErrPinMismatch struct {
	Name  string
	Field string
	Want  uint32
	Got   uint32
}

func (e ErrPinMismatch) Error() string {
	return fmt.Sprintf("pinned map %q: %s mismatch: descriptor declares %d, pin has %d", e.Name, e.Field, e.Want, e.Got)
}
