package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad      Phase = "load"      // runtime binary loading
	PhaseCall      Phase = "call"      // native call dispatch
	PhaseMarshal   Phase = "marshal"   // arena staging / bulk data exchange
	PhaseRegister  Phase = "register"  // kind and manager registration
	PhaseValidate  Phase = "validate"  // property validation
	PhaseLifecycle Phase = "lifecycle" // component lifecycle hooks
	PhaseClone     Phase = "clone"     // hierarchy cloning
)

// Kind categorizes the error
type Kind string

const (
	KindUnregisteredKind Kind = "unregistered_kind"
	KindFieldMissing     Kind = "field_missing"
	KindCrossContainer   Kind = "cross_container"
	KindAllocation       Kind = "allocation"
	KindStaleHandle      Kind = "stale_handle"
	KindConstruction     Kind = "construction"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindTypeMismatch     Kind = "type_mismatch"
	KindInvalidData      Kind = "invalid_data"
)

// Error is the structured error type used throughout the binding layer
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
	}

	if e.Detail != "" {
		if e.Entity != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Entity names the kind, manager or proxy the error concerns
func (b *Builder) Entity(name string) *Builder {
	b.err.Entity = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnregisteredKind creates an error for a component kind nobody registered
func UnregisteredKind(phase Phase, kind string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnregisteredKind,
		Entity: kind,
		Detail: "component kind not registered",
	}
}

// FieldMissing creates a required-property validation error
func FieldMissing(kind, field string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindFieldMissing,
		Entity: kind,
		Path:   []string{field},
		Detail: fmt.Sprintf("required property %q has no value", field),
	}
}

// CrossContainer creates an error for a container-scoped reference used
// outside its container
func CrossContainer(phase Phase, path []string, src, dst int32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCrossContainer,
		Path:   path,
		Detail: fmt.Sprintf("reference belongs to container %d, expected %d", src, dst),
	}
}

// AllocationFailed creates an allocation failure error. Allocation failures
// are fatal to the operation in progress and always propagate.
func AllocationFailed(size uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// StaleHandle creates an error for strict-mode access to a destroyed proxy
func StaleHandle(entity string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindStaleHandle,
		Entity: entity,
		Detail: "proxy was destroyed",
	}
}

// Construction creates an error for a failed user constructor or hook
func Construction(kind, hook string, cause error) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindConstruction,
		Entity: kind,
		Detail: fmt.Sprintf("%s failed", hook),
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %s, want %s", got, want),
	}
}

// CallFailed wraps a native call failure
func CallFailed(fn string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("native call %s", fn),
		Cause:  cause,
	}
}

// Load creates a runtime loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
