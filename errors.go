package streamprio

import "fmt"

// ViolationCode identifies the class of contract violation a
// [*ContractViolation] panic represents, stable across releases so a
// caller's recover handler can match on it.
type ViolationCode uint8

const (
	// ViolationUnknown is the zero value and never produced by this
	// package.
	ViolationUnknown ViolationCode = iota

	// ViolationDoubleOpen indicates Open was called with a Node that
	// is already open.
	ViolationDoubleOpen

	// ViolationNotOpen indicates an operation (Close, Reprioritize,
	// SetActive) was called with a Node that is not currently open in
	// this Scheduler.
	ViolationNotOpen

	// ViolationWeightRange indicates a weight outside [MinWeight,
	// MaxWeight] was supplied to Open or Reprioritize.
	ViolationWeightRange

	// ViolationForeignParent indicates a Parent argument (Node)
	// belongs to a different Scheduler than the one being called.
	ViolationForeignParent

	// ViolationDisposeNotEmpty indicates Dispose was called on a
	// Scheduler that still has open nodes.
	ViolationDisposeNotEmpty

	// ViolationReentrant indicates a tree-mutating call (Open, Close,
	// Reprioritize, SetActive, Dispose) was made from inside a
	// VisitorFunc invoked by Run.
	ViolationReentrant
)

// String implements fmt.Stringer.
func (c ViolationCode) String() string {
	switch c {
	case ViolationDoubleOpen:
		return "double_open"
	case ViolationNotOpen:
		return "not_open"
	case ViolationWeightRange:
		return "weight_range"
	case ViolationForeignParent:
		return "foreign_parent"
	case ViolationDisposeNotEmpty:
		return "dispose_not_empty"
	case ViolationReentrant:
		return "reentrant"
	default:
		return "unknown"
	}
}

// ContractViolation is the panic value raised whenever a caller
// breaks one of this package's usage invariants. These conditions are
// programming errors, never transient or data-dependent failures, so
// they are not returned as errors: spec contract violations are fatal
// by design, and a program that recovers one should treat it as
// "close this connection", not "retry this call".
type ContractViolation struct {
	Code    ViolationCode
	Message string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("streamprio: %s: %s", e.Code, e.Message)
}

func violate(code ViolationCode, format string, args ...any) {
	panic(&ContractViolation{Code: code, Message: fmt.Sprintf(format, args...)})
}
