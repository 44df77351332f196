package beanpod

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeBeanNotFound indicates no exact registration and no capability implementation exists
	CodeBeanNotFound = "BEAN_NOT_FOUND"

	// CodeCircularDependency indicates a type depends on itself, directly or transitively
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeAmbiguousCapability indicates more than one primary implementation of a capability
	CodeAmbiguousCapability = "AMBIGUOUS_CAPABILITY"

	// CodeTypeMismatch indicates a resolved bean cannot be asserted to the requested type
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeInvalidComponent indicates a malformed component definition
	CodeInvalidComponent = "INVALID_COMPONENT"

	// CodeInvalidCapability indicates a concrete type does not implement the declared capability
	CodeInvalidCapability = "INVALID_CAPABILITY"

	// CodeHookAborted indicates a resolution hook rejected the resolution
	CodeHookAborted = "HOOK_ABORTED"

	// CodeHealthCheckFailed indicates a published singleton reported itself unhealthy
	CodeHealthCheckFailed = "HEALTH_CHECK_FAILED"
)

// Context keys attached to container errors.
const (
	ContextType       = "type"
	ContextCycle      = "cycle"
	ContextCandidates = "candidates"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrBeanNotFoundSentinel is a sentinel error for bean not found (for error checking).
var ErrBeanNotFoundSentinel = errs.NewError(CodeBeanNotFound, "bean not found", nil)

// ErrCircularDependencySentinel is a sentinel error for circular dependency (for error checking).
var ErrCircularDependencySentinel = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrAmbiguousCapabilitySentinel is a sentinel error for ambiguous capabilities (for error checking).
var ErrAmbiguousCapabilitySentinel = errs.NewError(CodeAmbiguousCapability, "ambiguous capability", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrInvalidComponent is returned when a component has no type or no constructor.
var ErrInvalidComponent = errs.NewError(CodeInvalidComponent, "invalid component", nil)

// ErrInvalidCapability is a sentinel error for capability declarations a type cannot satisfy.
var ErrInvalidCapability = errs.NewError(CodeInvalidCapability, "invalid capability", nil)

// ErrHookAborted is a sentinel error for resolutions rejected by a hook.
var ErrHookAborted = errs.NewError(CodeHookAborted, "resolution aborted by hook", nil)

// ErrHealthCheckFailed is a sentinel error for unhealthy singletons.
var ErrHealthCheckFailed = errs.NewError(CodeHealthCheckFailed, "health check failed", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrBeanNotFound creates an error for a type with no registration and no implementation.
func ErrBeanNotFound(t reflect.Type) *errs.Error {
	return errs.NewError(
		CodeBeanNotFound,
		fmt.Sprintf("no bean found for type %s", typeName(t)),
		nil,
	).WithContext(ContextType, t).(*errs.Error)
}

// ErrCircularDependency creates an error for circular dependency detection.
// The path is copied.
func ErrCircularDependency(path []reflect.Type) *errs.Error {
	cycle := append([]reflect.Type(nil), path...)

	return errs.NewError(
		CodeCircularDependency,
		"circular dependency detected: "+formatPath(cycle),
		nil,
	).WithContext(ContextCycle, cycle).(*errs.Error)
}

// ErrAmbiguousCapability creates an error for a capability with several primaries.
func ErrAmbiguousCapability(capability reflect.Type, candidates []reflect.Type) *errs.Error {
	return errs.NewError(
		CodeAmbiguousCapability,
		fmt.Sprintf("capability %s has %d primary implementations: %s",
			typeName(capability), len(candidates), formatList(candidates)),
		nil,
	).WithContext(ContextType, capability).
		WithContext(ContextCandidates, append([]reflect.Type(nil), candidates...)).(*errs.Error)
}

// ErrTypeMismatch creates an error for type mismatch during resolution
func ErrTypeMismatch(want reflect.Type, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("bean %s type mismatch: got %T", typeName(want), actual),
		nil,
	).WithContext(ContextType, want).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

func newComponentError(t reflect.Type, msg string) *errs.Error {
	return errs.NewError(
		CodeInvalidComponent,
		fmt.Sprintf("component %s: %s", typeName(t), msg),
		nil,
	).WithContext(ContextType, t).(*errs.Error)
}

func newCapabilityError(concrete, capability reflect.Type) *errs.Error {
	return errs.NewError(
		CodeInvalidCapability,
		fmt.Sprintf("%s does not implement %s", typeName(concrete), typeName(capability)),
		nil,
	).WithContext(ContextType, capability).(*errs.Error)
}

func newHookError(t reflect.Type, cause error) *errs.Error {
	return errs.NewError(
		CodeHookAborted,
		fmt.Sprintf("resolution of %s aborted", typeName(t)),
		cause,
	).WithContext(ContextType, t).(*errs.Error)
}

func newHealthError(t reflect.Type, cause error) *errs.Error {
	return errs.NewError(
		CodeHealthCheckFailed,
		fmt.Sprintf("bean %s is unhealthy", typeName(t)),
		cause,
	).WithContext(ContextType, t).(*errs.Error)
}

// =============================================================================
// ERROR INSPECTION
// =============================================================================

// ErrorCode returns the code of the first coded error in err's chain, or ""
// when there is none, as for errors raised by constructors.
func ErrorCode(err error) string {
	var coded errs.CodedError
	if errs.As(err, &coded) {
		return coded.GetCode()
	}
	return ""
}

// ErrorType returns the type a container error is about: the missing type,
// the ambiguous capability or the malformed component.
func ErrorType(err error) (reflect.Type, bool) {
	return contextValue[reflect.Type](err, ContextType)
}

// CycleOf returns the cycle reported by a CircularDependency error, in
// encounter order.
func CycleOf(err error) ([]reflect.Type, bool) {
	return contextValue[[]reflect.Type](err, ContextCycle)
}

// CandidatesOf returns the competing primaries of an AmbiguousCapability error.
func CandidatesOf(err error) ([]reflect.Type, bool) {
	return contextValue[[]reflect.Type](err, ContextCandidates)
}

func contextValue[T any](err error, key string) (T, bool) {
	var zero T

	var e *errs.Error
	if !errs.As(err, &e) {
		return zero, false
	}

	v, ok := e.GetContext()[key].(T)
	if !ok {
		return zero, false
	}

	return v, true
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

func formatPath(path []reflect.Type) string {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = typeName(t)
	}

	return strings.Join(names, " -> ")
}

func formatList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typeName(t)
	}

	return "[" + strings.Join(names, ", ") + "]"
}
