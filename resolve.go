package iocagg

import (
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func (c *Container) ensureBuilt() error {
	if c.built.Load() || c.wired.Load() {
		return nil
	}
	return c.Build()
}

// Resolve returns a bean instance by its ID or panics if it cannot be resolved.
// Prefer ResolveSafe in production code to handle errors gracefully.
func (c *Container) Resolve(beanID string) any {
	v, err := c.ResolveSafe(beanID)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveSafe returns a bean instance by its ID, building the container first if needed.
// A missing bean yields an error matching ErrNoSuchBean.
func (c *Container) ResolveSafe(beanID string) (any, error) {
	if beanID == emptyString {
		return nil, ErrBeanIdParamIsEmpty
	}
	beanID = strings.ToLower(beanID)

	if err := c.ensureBuilt(); err != nil {
		return nil, err
	}

	c.regMu.RLock()
	bn, ok := c.registeredBeans[beanID]
	c.regMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchBean, "bean '%s' not found", beanID)
	}
	if bn.instance == nil {
		return nil, errors.Errorf("bean '%s' is not initialized", beanID)
	}
	return bn.instance, nil
}

// ResolveAs returns a bean instance by its ID and casts it to type T.
func ResolveAs[T any](c *Container, beanID string) (T, error) {
	var zero T
	v, err := c.ResolveSafe(beanID)
	if err != nil {
		return zero, err
	}
	x, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("bean '%s' is not of requested type", beanID)
	}
	return x, nil
}

// ResolveDependency resolves the bean described by d. With a beanName the lookup is by id and the
// bean must be assignable to d.Type; otherwise exactly one registered bean must be assignable.
//
// Failures match ErrNoSuchBean, ErrNoUniqueBean or ErrBeanNotAssignable with errors.Is.
// A missing bean for a descriptor that is not Required resolves to nil without error.
func (c *Container) ResolveDependency(d *DependencyDescriptor, beanName string) (any, error) {
	if d == nil || d.Type == nil {
		return nil, ErrDescriptorIsNil
	}

	if beanName != emptyString {
		instance, err := c.ResolveSafe(beanName)
		if err != nil {
			if !d.Required && errors.Is(err, ErrNoSuchBean) {
				return nil, nil
			}
			return nil, err
		}
		out, ok := assignTo(d.Type, instance)
		if !ok {
			return nil, errors.Wrapf(ErrBeanNotAssignable, "bean '%s' of type %T for %v", strings.ToLower(beanName), instance, d)
		}
		return out, nil
	}

	if err := c.ensureBuilt(); err != nil {
		return nil, err
	}

	ids, values := c.candidates(d.Type)
	switch len(ids) {
	case 0:
		if !d.Required {
			return nil, nil
		}
		return nil, errors.Wrapf(ErrNoSuchBean, "type %v for %v", d.Type, d)
	case 1:
		return values[0], nil
	default:
		return nil, errors.Wrapf(ErrNoUniqueBean, "type %v for %v matches %s", d.Type, d, strings.Join(ids, ", "))
	}
}

// candidates returns the ids, in sorted order, and the assignable values of every bean that can
// satisfy dependencyType.
func (c *Container) candidates(dependencyType reflect.Type) ([]string, []any) {
	c.regMu.RLock()
	defer c.regMu.RUnlock()

	ids := make([]string, 0, 1)
	for id, bn := range c.registeredBeans {
		if bn.instance == nil {
			continue
		}
		if _, ok := assignTo(dependencyType, bn.instance); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		v, _ := assignTo(dependencyType, c.registeredBeans[id].instance)
		values = append(values, v)
	}
	return ids, values
}

// assignTo converts instance into a value usable where t is expected. Struct beans are held as
// pointers, so a struct dependency receives a copy of the pointed-to value.
func assignTo(t reflect.Type, instance any) (any, bool) {
	if instance == nil {
		return nil, false
	}
	v := reflect.ValueOf(instance)
	if v.Type().AssignableTo(t) {
		return instance, true
	}
	if t.Kind() == reflect.Struct && v.Kind() == reflect.Ptr && v.Type().Elem() == t {
		return v.Elem().Interface(), true
	}
	return nil, false
}
