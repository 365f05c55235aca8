package aggregator

import "reflect"

// Advisor pairs a method matcher with the interceptor applied to the matched methods.
type Advisor struct {
	methods MethodSet
	advice  *Interceptor
}

// Matches reports whether m is one of the advised methods.
func (a *Advisor) Matches(m Method) bool {
	return a.methods.Contains(m)
}

func (a *Advisor) Advice() *Interceptor {
	return a.advice
}

func (a *Advisor) Methods() MethodSet {
	return a.methods
}

// ComponentType returns the aggregator interface the advisor was built for.
func (a *Advisor) ComponentType() reflect.Type {
	return a.methods.Owner()
}
