package aggregator

import "github.com/pkg/errors"

var (
	ErrComponentTypeNil   = errors.New("component type must not be nil")
	ErrNotInterface       = errors.New("component type must be an interface")
	ErrNotAutowireCapable = errors.New("bean factory must be autowire capable")
	ErrNotTargetMethod    = errors.New("method is not a target of the aggregator")
	ErrUnexpectedType     = errors.New("resolved bean has an unexpected type")
)
