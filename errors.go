package iocagg

import "github.com/pkg/errors"

var (
	ErrBeanIdParamIsEmpty   = errors.New("beanID parameter is empty")
	ErrBeanTypeParamIsNil   = errors.New("beanType parameter is nil")
	ErrBeanParamIsNil       = errors.New("bean parameter is nil")
	ErrBeanTypeNotSupported = errors.New("beanType is not supported")
	ErrRegistrationClosed   = errors.New("container already built; registration is closed")
	ErrDescriptorIsNil      = errors.New("dependency descriptor is nil")
	ErrNoSuchBean           = errors.New("no qualifying bean")
	ErrNoUniqueBean         = errors.New("no unique qualifying bean")
	ErrBeanNotAssignable    = errors.New("bean is not assignable to the required type")
)
