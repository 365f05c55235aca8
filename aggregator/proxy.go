package aggregator

import (
	"reflect"

	"github.com/Station-Manager/iocagg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Proxy dispatches calls on an aggregator interface to its advisor. Go cannot implement an
// interface at run time, so a small adapter (see cmd/aggregen) implements the interface and
// forwards each method to the proxy by name.
type Proxy struct {
	advisor *Advisor
}

func NewProxy(a *Advisor) *Proxy {
	return &Proxy{advisor: a}
}

func (p *Proxy) Advisor() *Advisor {
	return p.advisor
}

// Call invokes the target method called name.
func (p *Proxy) Call(name string) (any, error) {
	m, ok := p.advisor.Methods().Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotTargetMethod, "%v.%s", p.advisor.ComponentType(), name)
	}
	return p.CallMethod(m)
}

// CallMethod invokes m if the advisor matches it.
func (p *Proxy) CallMethod(m Method) (any, error) {
	if !p.advisor.Matches(m) {
		return nil, errors.Wrapf(ErrNotTargetMethod, "%v", m)
	}
	return p.advisor.Advice().Invoke(NewInvocation(m))
}

// Unmatched panics for a method that cannot be served by the aggregator.
func (p *Proxy) Unmatched(name string) {
	panic(errors.Wrapf(ErrNotTargetMethod, "%v.%s", p.advisor.ComponentType(), name))
}

// Get calls name and converts the result to R. A nil resolution yields the zero R.
func Get[R any](p *Proxy, name string) (R, error) {
	var zero R
	v, err := p.Call(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	r, ok := v.(R)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedType, "%v.%s resolved %T", p.advisor.ComponentType(), name, v)
	}
	return r, nil
}

// MustGet is Get for methods that cannot return an error. Failures panic with the error value.
func MustGet[R any](p *Proxy, name string) R {
	r, err := Get[R](p, name)
	if err != nil {
		panic(err)
	}
	return r
}

// Option configures New and Register.
type Option func(*FactoryBean)

// WithLogger sets the logger used while building the advisor.
func WithLogger(logger *zap.Logger) Option {
	return func(f *FactoryBean) {
		f.SetLogger(logger)
	}
}

// New builds a proxy for the aggregator interface T resolving through beanFactory.
func New[T any](beanFactory any, opts ...Option) (*Proxy, error) {
	f := NewFactoryBean(reflect.TypeOf((*T)(nil)).Elem(), beanFactory)
	for _, opt := range opts {
		opt(f)
	}
	advisor, err := f.Object()
	if err != nil {
		return nil, err
	}
	return NewProxy(advisor), nil
}

// Register builds a proxy for T over c, wraps it with adapt and registers the result as a bean,
// so other beans can receive the aggregator through a di.inject tag.
func Register[T any](c *iocagg.Container, beanID string, adapt func(*Proxy) T, opts ...Option) error {
	p, err := New[T](c, opts...)
	if err != nil {
		return err
	}
	return c.RegisterInstance(beanID, adapt(p))
}
