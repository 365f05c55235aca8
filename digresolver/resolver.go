// Package digresolver lets aggregators resolve their beans from a go.uber.org/dig container.
package digresolver

import (
	"reflect"

	"github.com/Station-Manager/iocagg"
	"go.uber.org/dig"
)

var inType = reflect.TypeOf(dig.In{})

// Resolver implements iocagg.AutowireCapable on top of a dig container. Values are produced by
// dig, so dig decides whether they are shared.
type Resolver struct {
	container *dig.Container
}

func New(c *dig.Container) *Resolver {
	return &Resolver{container: c}
}

// ResolveDependency invokes a function taking the requested type. A beanName is matched against
// dig's named values. dig's own errors are returned unchanged.
func (r *Resolver) ResolveDependency(d *iocagg.DependencyDescriptor, beanName string) (any, error) {
	if d == nil || d.Type == nil {
		return nil, iocagg.ErrDescriptorIsNil
	}

	var resolved reflect.Value
	if beanName == "" && d.Required {
		fnType := reflect.FuncOf([]reflect.Type{d.Type}, nil, false)
		fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
			resolved = args[0]
			return nil
		})
		if err := r.container.Invoke(fn.Interface()); err != nil {
			return nil, err
		}
	} else {
		paramType := paramStruct(d.Type, beanName, !d.Required)
		fnType := reflect.FuncOf([]reflect.Type{paramType}, nil, false)
		fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
			resolved = args[0].Field(1)
			return nil
		})
		if err := r.container.Invoke(fn.Interface()); err != nil {
			return nil, err
		}
	}

	if !resolved.IsValid() || isNil(resolved) {
		return nil, nil
	}
	return resolved.Interface(), nil
}

// paramStruct builds the equivalent of
//
//	struct {
//		dig.In
//		Value T `name:"beanName" optional:"true"`
//	}
func paramStruct(t reflect.Type, name string, optional bool) reflect.Type {
	var tag string
	if name != "" {
		tag = `name:"` + name + `"`
	}
	if optional {
		if tag != "" {
			tag += " "
		}
		tag += `optional:"true"`
	}
	return reflect.StructOf([]reflect.StructField{
		{Name: "In", Type: inType, Anonymous: true},
		{Name: "Value", Type: t, Tag: reflect.StructTag(tag)},
	})
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
