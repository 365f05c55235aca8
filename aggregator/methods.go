package aggregator

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// universal lists the methods every value may carry for formatting or error reporting.
// They never select a bean even when declared on an aggregator interface.
var universal = map[string]reflect.Type{
	"String":   reflect.TypeOf((*fmt.Stringer)(nil)).Elem().Method(0).Type,
	"GoString": reflect.TypeOf((*fmt.GoStringer)(nil)).Elem().Method(0).Type,
	"Error":    errorType.Method(0).Type,
}

// Method identifies one method of an aggregator interface. Two methods are the same only if
// owner, name and signature all match.
type Method struct {
	Owner reflect.Type
	Name  string
	Type  reflect.Type
}

func methodOf(owner reflect.Type, m reflect.Method) Method {
	return Method{Owner: owner, Name: m.Name, Type: m.Type}
}

func (m Method) String() string {
	return fmt.Sprintf("%v.%s%s", m.Owner, m.Name, m.Type.String()[len("func"):])
}

// ReturnsError reports whether the method has the (R, error) shape.
func (m Method) ReturnsError() bool {
	return m.Type.NumOut() == 2
}

func (m Method) reflectMethod() reflect.Method {
	return reflect.Method{Name: m.Name, Type: m.Type}
}

// IsUniversal reports whether m is one of the String, GoString or Error methods.
func IsUniversal(m reflect.Method) bool {
	t, ok := universal[m.Name]
	return ok && t == m.Type
}

// IsTarget reports whether m, a method of an interface type, selects a bean: it takes no
// arguments, is not universal, and returns either R or (R, error) where R is not error.
func IsTarget(m reflect.Method) bool {
	if m.Type.NumIn() != 0 || m.Type.IsVariadic() || IsUniversal(m) {
		return false
	}
	switch m.Type.NumOut() {
	case 1:
		return m.Type.Out(0) != errorType
	case 2:
		return m.Type.Out(0) != errorType && m.Type.Out(1) == errorType
	default:
		return false
	}
}

// MethodSet is an immutable set of target methods.
type MethodSet struct {
	owner  reflect.Type
	byName map[string]Method
}

// TargetMethods computes the target methods of interface t. Methods reached through embedded
// interfaces are included.
func TargetMethods(t reflect.Type) (MethodSet, error) {
	if t == nil {
		return MethodSet{}, ErrComponentTypeNil
	}
	if t.Kind() != reflect.Interface {
		return MethodSet{}, errors.Wrapf(ErrNotInterface, "%v is a %v", t, t.Kind())
	}

	set := MethodSet{owner: t, byName: make(map[string]Method, t.NumMethod())}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if IsTarget(m) {
			set.byName[m.Name] = methodOf(t, m)
		}
	}
	return set, nil
}

// Contains reports structural membership: name, signature and owner must all match.
func (s MethodSet) Contains(m Method) bool {
	got, ok := s.byName[m.Name]
	return ok && got == m
}

// Lookup returns the target method with the given name.
func (s MethodSet) Lookup(name string) (Method, bool) {
	m, ok := s.byName[name]
	return m, ok
}

func (s MethodSet) Len() int {
	return len(s.byName)
}

// Owner returns the interface the set was computed from.
func (s MethodSet) Owner() reflect.Type {
	return s.owner
}

// Methods returns the methods ordered by name.
func (s MethodSet) Methods() []Method {
	out := make([]Method, 0, len(s.byName))
	for _, m := range s.byName {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
