package aggregator

import (
	"reflect"

	"github.com/Station-Manager/iocagg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var advisorType = reflect.TypeOf((*Advisor)(nil))

// FactoryBean builds the Advisor for one aggregator interface. It is configured through setters
// and then asked for its Object; every call to Object builds a new advisor with an empty cache.
type FactoryBean struct {
	componentType reflect.Type
	beanFactory   any
	logger        *zap.Logger
}

// NewFactoryBean returns a factory bean for componentType resolving through beanFactory.
func NewFactoryBean(componentType reflect.Type, beanFactory any) *FactoryBean {
	return &FactoryBean{componentType: componentType, beanFactory: beanFactory}
}

func (f *FactoryBean) ComponentType() reflect.Type {
	return f.componentType
}

func (f *FactoryBean) SetComponentType(t reflect.Type) {
	f.componentType = t
}

// SetBeanFactory sets the container. It must implement iocagg.AutowireCapable.
func (f *FactoryBean) SetBeanFactory(beanFactory any) {
	f.beanFactory = beanFactory
}

func (f *FactoryBean) SetLogger(logger *zap.Logger) {
	f.logger = logger
}

// ObjectType is the type of the value produced by Object.
func (f *FactoryBean) ObjectType() reflect.Type {
	return advisorType
}

// Object validates the configuration and builds the advisor.
func (f *FactoryBean) Object() (*Advisor, error) {
	if f.componentType == nil {
		return nil, ErrComponentTypeNil
	}
	if f.componentType.Kind() != reflect.Interface {
		return nil, errors.Wrapf(ErrNotInterface, "%v is a %v", f.componentType, f.componentType.Kind())
	}
	resolver, ok := f.beanFactory.(iocagg.AutowireCapable)
	if !ok {
		return nil, errors.Wrapf(ErrNotAutowireCapable, "got %T", f.beanFactory)
	}

	methods, err := TargetMethods(f.componentType)
	if err != nil {
		return nil, err
	}
	return f.createAdvisor(resolver, methods), nil
}

func (f *FactoryBean) createAdvisor(resolver iocagg.AutowireCapable, methods MethodSet) *Advisor {
	logger := f.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	names := make([]string, 0, methods.Len())
	for _, m := range methods.Methods() {
		names = append(names, m.Name)
	}
	logger.Debug("aggregator advisor created",
		zap.Stringer("component", methods.Owner()),
		zap.Strings("methods", names))

	return &Advisor{methods: methods, advice: NewInterceptor(resolver)}
}
