package iocagg

import (
	"os"
	"reflect"
	"strings"
	"sync/atomic"
)

// LiteralProvider supplies a value for a string dependency that no registered bean satisfies.
// id is the lower-cased di.inject tag value and targetType the field type. found reports whether
// a value is available; err aborts the build.
type LiteralProvider func(id string, targetType reflect.Type) (value any, found bool, err error)

var literalProvider atomic.Value // stores LiteralProvider

func init() {
	// atomic.Value needs a consistent concrete type, so seed it with a typed nil.
	literalProvider.Store(LiteralProvider(nil))
}

// SetLiteralProvider installs the process-wide literal provider. Passing nil removes it.
func SetLiteralProvider(p LiteralProvider) {
	literalProvider.Store(p)
}

func loadLiteralProvider() LiteralProvider {
	if provider, ok := literalProvider.Load().(LiteralProvider); ok {
		return provider
	}
	return nil
}

// EnvLiteralProvider resolves literals from environment variables named prefix + upper-cased id,
// so with prefix "APP_" the tag `di.inject:"WorkingDir"` reads APP_WORKINGDIR.
func EnvLiteralProvider(prefix string) LiteralProvider {
	return func(id string, targetType reflect.Type) (any, bool, error) {
		if targetType.Kind() != reflect.String {
			return nil, false, nil
		}
		value, ok := os.LookupEnv(prefix + strings.ToUpper(id))
		if !ok {
			return nil, false, nil
		}
		return reflect.ValueOf(value).Convert(targetType).Interface(), true, nil
	}
}
