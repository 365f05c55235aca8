package aggregator

import (
	"sync"

	"github.com/Station-Manager/iocagg"
)

// Invocation is an intercepted call on an aggregator.
type Invocation interface {
	Method() Method
}

type call struct {
	method Method
}

func (c call) Method() Method {
	return c.method
}

// NewInvocation wraps m as an Invocation.
func NewInvocation(m Method) Invocation {
	return call{method: m}
}

// Interceptor turns a call on an aggregator method into a container lookup for the method's
// result type. The descriptor for each method is built on first use and then shared by every
// later call; the resolved bean itself is never cached.
type Interceptor struct {
	resolver iocagg.AutowireCapable

	// descriptors maps Method to *iocagg.DependencyDescriptor. Entries are written once.
	descriptors sync.Map

	newDescriptor func(Method) *iocagg.DependencyDescriptor
}

// NewInterceptor creates an interceptor resolving through resolver. The resolver is shared, not owned.
func NewInterceptor(resolver iocagg.AutowireCapable) *Interceptor {
	return &Interceptor{
		resolver:      resolver,
		newDescriptor: returnDescriptor,
	}
}

func returnDescriptor(m Method) *iocagg.DependencyDescriptor {
	return iocagg.NewReturnDescriptor(m.Owner, m.reflectMethod(), true)
}

// ResolveDescriptor returns the cached descriptor for m, creating it if absent. When two goroutines
// miss at the same time both build a descriptor but only the first stored one is ever returned.
func (i *Interceptor) ResolveDescriptor(m Method) *iocagg.DependencyDescriptor {
	if d, ok := i.descriptors.Load(m); ok {
		return d.(*iocagg.DependencyDescriptor)
	}
	d, _ := i.descriptors.LoadOrStore(m, i.newDescriptor(m))
	return d.(*iocagg.DependencyDescriptor)
}

// Invoke resolves the bean for the invoked method. Container errors are returned unchanged.
func (i *Interceptor) Invoke(inv Invocation) (any, error) {
	return i.resolver.ResolveDependency(i.ResolveDescriptor(inv.Method()), "")
}
