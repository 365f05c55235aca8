package iocagg

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configOnly registers a Config bean whose WorkingDir literal is left to the provider.
func configOnly(t *testing.T) (*Container, *Config) {
	t.Helper()
	cfg := &Config{}
	c := New()
	require.NoError(t, c.RegisterInstance("ServiceBeanConfig", cfg))
	return c, cfg
}

func TestLiteralProvider_InjectsMissingString(t *testing.T) {
	t.Cleanup(func() { SetLiteralProvider(nil) })

	c := New()
	require.NoError(t, c.Register("ReceiverBean", reflect.TypeOf((*Service)(nil))))
	require.NoError(t, c.RegisterInstance("ServiceBeanConfig", &Config{}))
	require.NoError(t, c.RegisterInstance("ServiceBeanLogger", &Logger{}))

	SetLiteralProvider(func(id string, typ reflect.Type) (any, bool, error) {
		if id == "workingdir" && typ.Kind() == reflect.String {
			return "/workspace", true, nil
		}
		return nil, false, nil
	})

	require.NoError(t, c.Build())
	svc, err := ResolveAs[*Service](c, "ReceiverBean")
	require.NoError(t, err)
	require.NotNil(t, svc.Config)
	assert.Equal(t, "/workspace", svc.Config.WorkingDir)

	// The literal is cached as a bean.
	dir, err := ResolveAs[string](c, "WorkingDir")
	require.NoError(t, err)
	assert.Equal(t, "/workspace", dir)
}

func TestLiteralProvider_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider LiteralProvider
		want     string
	}{
		{
			name: "not installed",
			want: "bean `workingdir` is required but not registered",
		},
		{
			name:     "not found",
			provider: func(string, reflect.Type) (any, bool, error) { return nil, false, nil },
			want:     "dependency bean 'workingdir' for 'servicebeanconfig' receiver bean not found",
		},
		{
			name:     "provider error",
			provider: func(string, reflect.Type) (any, bool, error) { return nil, false, errors.New("boom") },
			want:     "literal provider error for 'workingdir': boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { SetLiteralProvider(nil) })
			SetLiteralProvider(tt.provider)

			c, _ := configOnly(t)
			err := c.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLiteralProvider_NotCalledWhenBeanExists(t *testing.T) {
	t.Cleanup(func() { SetLiteralProvider(nil) })
	SetLiteralProvider(func(string, reflect.Type) (any, bool, error) {
		t.Fatalf("literal provider should not be called when a bean exists")
		return nil, false, nil
	})

	c, cfg := configOnly(t)
	require.NoError(t, c.RegisterInstance("WorkingDir", "/var/app"))
	require.NoError(t, c.Build())
	assert.Equal(t, "/var/app", cfg.WorkingDir)
}

func TestLiteralProvider_NotUsedForStructDependencies(t *testing.T) {
	t.Cleanup(func() { SetLiteralProvider(nil) })
	SetLiteralProvider(func(id string, typ reflect.Type) (any, bool, error) {
		t.Fatalf("literal provider used for non-string dependency: id=%s, type=%v", id, typ)
		return nil, false, nil
	})

	c := New()
	require.NoError(t, c.Register("ServiceBean", reflect.TypeOf((*Service)(nil))))

	err := c.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required but not registered")
}

func TestEnvLiteralProvider(t *testing.T) {
	t.Cleanup(func() { SetLiteralProvider(nil) })
	t.Setenv("APP_WORKINGDIR", "/from/env")
	SetLiteralProvider(EnvLiteralProvider("APP_"))

	c, cfg := configOnly(t)
	require.NoError(t, c.Build())
	assert.Equal(t, "/from/env", cfg.WorkingDir)

	value, found, err := EnvLiteralProvider("APP_")("missing", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}
