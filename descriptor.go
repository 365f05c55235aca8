package iocagg

import (
	"fmt"
	"reflect"
)

// ReturnValue is the ParameterIndex of a descriptor that points at a method's first result
// rather than at one of its parameters.
const ReturnValue = -1

// DependencyDescriptor describes one injection point: what type to resolve, where the request
// comes from, and whether a missing bean is an error.
//
// Descriptors are immutable once created and may be shared between goroutines.
type DependencyDescriptor struct {
	// DeclaringType is the type that declares the injection point (for example an aggregator interface).
	DeclaringType reflect.Type
	// MethodName is the name of the declaring method, empty for field injection points.
	MethodName string
	// ParameterIndex is the parameter position, or ReturnValue.
	ParameterIndex int
	// Type is the type the resolved bean must be assignable to.
	Type reflect.Type
	// Required makes a missing bean an ErrNoSuchBean instead of a nil result.
	Required bool
}

// NewReturnDescriptor builds a descriptor for the first result of method, which must be a method
// obtained from an interface type (no receiver in its signature).
func NewReturnDescriptor(owner reflect.Type, method reflect.Method, required bool) *DependencyDescriptor {
	var dependencyType reflect.Type
	if method.Type != nil && method.Type.NumOut() > 0 {
		dependencyType = method.Type.Out(0)
	}
	return &DependencyDescriptor{
		DeclaringType:  owner,
		MethodName:     method.Name,
		ParameterIndex: ReturnValue,
		Type:           dependencyType,
		Required:       required,
	}
}

func (d *DependencyDescriptor) String() string {
	position := "return"
	if d.ParameterIndex != ReturnValue {
		position = fmt.Sprintf("param %d", d.ParameterIndex)
	}
	return fmt.Sprintf("%v.%s (%s) -> %v required=%t", d.DeclaringType, d.MethodName, position, d.Type, d.Required)
}

// AutowireCapable is implemented by containers that can resolve a dependency from a descriptor.
// beanName optionally narrows resolution to a single named bean.
type AutowireCapable interface {
	ResolveDependency(d *DependencyDescriptor, beanName string) (any, error)
}
