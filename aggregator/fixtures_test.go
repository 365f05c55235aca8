package aggregator

import (
	"fmt"
	"sync"

	"github.com/Station-Manager/iocagg"
)

type StudentService struct {
	name string
}

type Service interface {
	GetStudentService() *StudentService
}

type clock struct{}

type base interface {
	Clock() (*clock, error)
}

type wide interface {
	base
	fmt.Stringer
	Service
	Lookup(id string) *StudentService
	Close() error
	Reset()
	Pair() (*StudentService, *clock)
}

// serviceAdapter is what aggregen emits for Service.
type serviceAdapter struct {
	Proxy *Proxy
}

func (a *serviceAdapter) GetStudentService() *StudentService {
	return MustGet[*StudentService](a.Proxy, "GetStudentService")
}

func newServiceAdapter(p *Proxy) Service {
	return &serviceAdapter{Proxy: p}
}

type fakeResolver struct {
	mu      sync.Mutex
	calls   []*iocagg.DependencyDescriptor
	names   []string
	resolve func(d *iocagg.DependencyDescriptor) (any, error)
}

func (f *fakeResolver) ResolveDependency(d *iocagg.DependencyDescriptor, beanName string) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	f.names = append(f.names, beanName)
	f.mu.Unlock()
	return f.resolve(d)
}

func returning(v any, err error) *fakeResolver {
	return &fakeResolver{resolve: func(*iocagg.DependencyDescriptor) (any, error) { return v, err }}
}
