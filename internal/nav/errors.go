package nav

import "fmt"

// TransportError wraps a network or HTTP failure from an external
// collaborator. It is always surfaced as a non-fatal notice; the controller
// never changes mode because of one.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a lookup that resolved to nothing: a place id with
// no coordinates, or a directions request with zero routes.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// PermissionError indicates the user withheld a required permission, such as
// location access. The experience degrades but the controller stays usable.
type PermissionError struct {
	What string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.What)
}

// ValidationError indicates a rejected user action, such as starting
// navigation without a computed route.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
