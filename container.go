package iocagg

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	emptyString = ""
	pathSep     = " -> "
)

type tag string

const (
	inject tag = "di.inject" // di.inject marks an exported field for injection by bean id.
)

type bean struct {
	id              string
	beanType        reflect.Type
	instance        any
	singleton       bool
	hasDependencies bool
	dependencies    []string
}

// Container is a registry of beans keyed by lower-cased id. Beans are wired by the di.inject
// field tag during Build and can afterwards be looked up by id or, through ResolveDependency,
// by type.
type Container struct {
	buildLock sync.Mutex
	// Guards registeredBeans and requiredDependency.
	regMu sync.RWMutex
	built atomic.Bool
	// wired is set once every bean is instantiated and injected, before Initializer hooks run.
	// Lookups are served from then on, so a hook may resolve through the container.
	wired atomic.Bool

	logger *zap.Logger

	// requiredDependency maps a bean id to the type its receivers expect. If `Service` has a
	// `di.inject:"config"` field of type *Config, then "config" maps to Config.
	requiredDependency map[string]reflect.Type

	registeredBeans map[string]bean
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and build diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(opts ...Option) *Container {
	c := &Container{
		logger:             zap.NewNop(),
		requiredDependency: make(map[string]reflect.Type),
		registeredBeans:    make(map[string]bean),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register registers a bean by type. Struct types are normalized to pointer-to-struct.
// Bean ids are case-insensitive; they are stored lower-cased, as are di.inject tag values.
//
// Only structs and pointers to structs can be registered this way; literals such as strings
// must go through RegisterInstance.
func (c *Container) Register(beanID string, beanType reflect.Type) error {
	if beanID == emptyString {
		return ErrBeanIdParamIsEmpty
	}
	if beanType == nil {
		return ErrBeanTypeParamIsNil
	}
	if c.closed() {
		return ErrRegistrationClosed
	}

	switch beanType.Kind() {
	case reflect.Ptr:
		if beanType.Elem().Kind() != reflect.Struct {
			return errors.Wrapf(ErrBeanTypeNotSupported, "%v", beanType)
		}
	case reflect.Struct:
		beanType = reflect.PointerTo(beanType)
	default:
		return errors.Wrapf(ErrBeanTypeNotSupported, "%v", beanType)
	}

	c.store(bean{id: strings.ToLower(beanID), beanType: beanType})
	return nil
}

// RegisterInstance registers a ready-made singleton. Struct values are copied behind a pointer.
func (c *Container) RegisterInstance(beanID string, instance any) error {
	if beanID == emptyString {
		return ErrBeanIdParamIsEmpty
	}
	if instance == nil {
		return ErrBeanParamIsNil
	}
	if c.closed() {
		return ErrRegistrationClosed
	}

	beanType := reflect.TypeOf(instance)
	if beanType.Kind() == reflect.Struct {
		ptr := reflect.New(beanType)
		ptr.Elem().Set(reflect.ValueOf(instance))
		instance = ptr.Interface()
		beanType = ptr.Type()
	}

	c.store(bean{id: strings.ToLower(beanID), beanType: beanType, instance: instance, singleton: true})
	return nil
}

func (c *Container) store(b bean) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	b.hasDependencies, b.dependencies = c.checkForDependency(b.beanType)
	c.registeredBeans[b.id] = b
	c.logger.Debug("bean registered",
		zap.String("bean", b.id),
		zap.Stringer("type", b.beanType),
		zap.Strings("dependencies", b.dependencies))
}

// Build verifies that every tagged dependency is registered with a compatible type, creates the
// beans registered by type, injects dependencies and finally runs Initializer hooks so that each
// bean is initialized after the beans it depends on.
//
// Hooks run with the registry unlocked: they may resolve beans, directly or through an
// aggregator. If a hook fails the container is left unbuilt and lookups build it again.
//
// Calling Build on a built container is a no-op.
func (c *Container) Build() error {
	c.buildLock.Lock()
	defer c.buildLock.Unlock()

	if c.built.Load() {
		return nil
	}

	initializers, err := c.wire()
	if err != nil {
		return err
	}

	c.wired.Store(true)
	for _, in := range initializers {
		if err := in.Initialize(); err != nil {
			c.wired.Store(false)
			return errors.Wrapf(err, "initializer for bean '%s' failed", in.id)
		}
	}
	c.built.Store(true)

	c.regMu.RLock()
	count := len(c.registeredBeans)
	c.regMu.RUnlock()
	c.logger.Debug("container built", zap.Int("beans", count))
	return nil
}

// closed reports whether registration is over: the container is built or being initialized.
func (c *Container) closed() bool {
	return c.built.Load() || c.wired.Load()
}

// wire runs the locked phases of Build and returns the Initializer beans in dependency order.
func (c *Container) wire() ([]pendingInit, error) {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	if err := c.verifyRequired(); err != nil {
		return nil, err
	}
	if err := c.instantiate(); err != nil {
		return nil, err
	}
	if err := c.injectDependencies(); err != nil {
		return nil, err
	}
	return c.initializationOrder()
}

func (c *Container) verifyRequired() error {
	for beanID, requiredType := range c.requiredDependency {
		regBean, ok := c.registeredBeans[beanID]
		if !ok {
			// A literal provider may still supply missing strings at injection time.
			if requiredType.Kind() == reflect.String && loadLiteralProvider() != nil {
				continue
			}
			return errors.Errorf("bean `%s` is required but not registered", beanID)
		}
		if !compatible(requiredType, regBean.beanType) {
			return errors.Errorf("bean '%s' type mismatch: required %v, registered %v", beanID, requiredType, regBean.beanType)
		}
	}
	return nil
}

func (c *Container) instantiate() error {
	for _, bn := range c.registeredBeans {
		if bn.instance != nil {
			continue
		}
		instance, err := createInstance(bn.beanType)
		if err != nil {
			return err
		}
		bn.instance = instance
		bn.singleton = true
		c.registeredBeans[bn.id] = bn
	}
	return nil
}

type pendingInit struct {
	id string
	Initializer
}

func (c *Container) initializationOrder() ([]pendingInit, error) {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	order := make([]string, 0, len(c.registeredBeans))

	var visit func(string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		if onPath[id] {
			return errors.Errorf("initializer order: dependency cycle detected at '%s'", id)
		}
		onPath[id] = true
		for _, dep := range c.registeredBeans[id].dependencies {
			if _, ok := c.registeredBeans[dep]; !ok {
				return errors.Errorf("initializer order: dependency '%s' required by '%s' not registered", dep, id)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		onPath[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for id := range c.registeredBeans {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	pending := make([]pendingInit, 0, len(order))
	for _, id := range order {
		if initr, ok := c.registeredBeans[id].instance.(Initializer); ok {
			pending = append(pending, pendingInit{id: id, Initializer: initr})
		}
	}
	return pending, nil
}

// Initializer is implemented by beans that need work done after their dependencies have been
// injected. Build fails with the returned error. Initialize may resolve other beans.
type Initializer interface {
	Initialize() error
}
