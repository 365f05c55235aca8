package iocagg

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

func createInstance(beanType reflect.Type) (any, error) {
	switch beanType.Kind() {
	case reflect.Ptr:
		if beanType.Elem().Kind() == reflect.Struct {
			return reflect.New(beanType.Elem()).Interface(), nil
		}
	case reflect.Struct:
		return reflect.New(beanType).Interface(), nil
	}
	return nil, errors.Wrapf(ErrBeanTypeNotSupported, "%v", beanType.Kind())
}

// compatible reports whether a bean registered as registered can satisfy a dependency of type required.
func compatible(required, registered reflect.Type) bool {
	switch required.Kind() {
	case reflect.Struct:
		return registered.Kind() == reflect.Ptr && registered.Elem() == required
	case reflect.Interface:
		return registered.Implements(required)
	default:
		return registered == required
	}
}

// checkForDependency lists the ids named by di.inject tags on exported fields of a struct (or
// pointer-to-struct) type and records the type each id is expected to have. Pointer-to-struct,
// struct, string and interface fields are considered; everything else is ignored. A struct field
// receives a copy of its bean.
//
// Callers must hold regMu.
func (c *Container) checkForDependency(beanType reflect.Type) (bool, []string) {
	if beanType.Kind() != reflect.Ptr || beanType.Elem().Kind() != reflect.Struct {
		return false, nil
	}

	structType := beanType.Elem()
	ids := make([]string, 0)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tagName, exists := field.Tag.Lookup(string(inject))
		if !exists || !field.IsExported() {
			continue
		}
		tagName = strings.ToLower(tagName)

		switch {
		case field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct:
			c.requiredDependency[tagName] = field.Type.Elem()
		case field.Type.Kind() == reflect.Struct, field.Type.Kind() == reflect.String, field.Type.Kind() == reflect.Interface:
			c.requiredDependency[tagName] = field.Type
		default:
			continue
		}
		ids = append(ids, tagName)
	}

	return len(ids) > 0, ids
}

// injectDependencies walks the dependency graph depth first, injecting each bean's dependencies
// before the bean itself and failing on the first cycle.
func (c *Container) injectDependencies() error {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	path := make([]string, 0, 16)

	var visit func(id string) error
	visit = func(id string) error {
		bn, ok := c.registeredBeans[id]
		if !ok {
			return errors.Errorf("injectDependencies: receiver bean '%s' not found", id)
		}
		if onPath[id] {
			return errors.Errorf("dependency cycle detected: %s", strings.Join(append(path, id), pathSep))
		}
		if visited[id] {
			return nil
		}

		onPath[id] = true
		path = append(path, id)

		if bn.hasDependencies && bn.instance == nil {
			return errors.Errorf("injectDependencies: receiver bean '%s' is nil", bn.id)
		}

		for _, depID := range bn.dependencies {
			depBean, err := c.dependencyBean(depID, bn.id)
			if err != nil {
				return err
			}
			if err := visit(depID); err != nil {
				return err
			}
			if depBean.instance == nil {
				return errors.Errorf("injectDependencies: dependency bean '%s' for '%s' receiver bean not instantiated", depID, bn.id)
			}
			if err := injectIntoStruct(bn, depBean, append([]string{}, path...)); err != nil {
				return errors.Wrap(err, "injectDependencies")
			}
		}

		onPath[id] = false
		path = path[:len(path)-1]
		visited[id] = true
		return nil
	}

	for id := range c.registeredBeans {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// dependencyBean looks up a dependency, falling back to the literal provider for missing strings.
// A literal that is found is cached as a synthetic bean.
func (c *Container) dependencyBean(depID, receiverID string) (bean, error) {
	if depBean, ok := c.registeredBeans[depID]; ok {
		return depBean, nil
	}

	expectedType, ok := c.requiredDependency[depID]
	if ok && expectedType.Kind() == reflect.String {
		if lp := loadLiteralProvider(); lp != nil {
			val, found, err := lp(depID, expectedType)
			if err != nil {
				return bean{}, errors.Wrapf(err, "injectDependencies: literal provider error for '%s'", depID)
			}
			if found {
				synthetic := bean{id: depID, instance: val, beanType: expectedType}
				c.registeredBeans[depID] = synthetic
				return synthetic, nil
			}
		}
	}
	return bean{}, errors.Errorf("injectDependencies: dependency bean '%s' for '%s' receiver bean not found", depID, receiverID)
}

// injectIntoStruct sets every field of the receiver whose di.inject tag names depBean. Fields that
// are unexported, or whose type cannot hold the dependency, are left untouched.
func injectIntoStruct(receiverBean bean, depBean bean, chain []string) error {
	// Local guard for a dependency already on the injection path, in case the DFS was bypassed.
	for _, id := range chain {
		if id == depBean.id {
			return errors.Errorf("dependency cycle detected: %s%s%s", strings.Join(chain, pathSep), pathSep, depBean.id)
		}
	}

	rv := reflect.ValueOf(receiverBean.instance)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errors.Errorf("injectIntoStruct: receiver bean '%s' is not a struct", receiverBean.id)
	}

	depVal := reflect.ValueOf(depBean.instance)
	depType := depBean.beanType

	for i := 0; i < rv.NumField(); i++ {
		// Tags are compared lower-cased, like bean ids.
		tagVal := strings.ToLower(rv.Type().Field(i).Tag.Get(string(inject)))
		if tagVal == emptyString || tagVal != depBean.id {
			continue
		}

		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}

		switch fieldType := fv.Type(); {
		case fieldType == depType:
			// Same type, literals included. Pointers to zero-sized structs may all share one address,
			// so each such field gets its own value; two tags naming different beans then never
			// receive the same pointer.
			if depType.Kind() == reflect.Ptr && depType.Elem().Kind() == reflect.Struct && depType.Elem().NumField() == 0 {
				fv.Set(reflect.New(depType.Elem()))
			} else {
				fv.Set(depVal)
			}
		case fieldType.Kind() == reflect.Interface:
			// Check the instance's dynamic type; the registered type may be less specific.
			if depVal.Type().Implements(fieldType) {
				fv.Set(depVal)
			}
		case fieldType.Kind() == reflect.Ptr && depType.Kind() == reflect.Struct && fieldType.Elem() == depType:
			// Field *T, bean T: the field points at a copy.
			ptr := reflect.New(depType)
			ptr.Elem().Set(depVal)
			fv.Set(ptr)
		case fieldType.Kind() == reflect.Struct && depType.Kind() == reflect.Ptr && depType.Elem() == fieldType:
			// Field T, bean *T: the field holds a copy of the injected bean.
			fv.Set(depVal.Elem())
		case fieldType.Kind() == reflect.Ptr && depType.Kind() == reflect.Ptr && fieldType.Elem() == depType.Elem():
			// Named pointer types with the same element.
			fv.Set(depVal)
		}
	}

	return nil
}
