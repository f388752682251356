package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAllRejectsInvalidHostPort(t *testing.T) {
	r, err := NewConsul("127.0.0.1:8500", zap.NewNop())
	require.NoError(t, err)

	err = r.RegisterAll(context.Background(), "inst-1", map[string]string{
		"repeat": "localhost-no-port",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `role "repeat"`)
}

func TestRegisterAllRejectsNonNumericPort(t *testing.T) {
	r, err := NewConsul("127.0.0.1:8500", zap.NewNop())
	require.NoError(t, err)

	err = r.RegisterAll(context.Background(), "inst-1", map[string]string{
		"repeat": "localhost:notaport",
	})
	require.Error(t, err)
}

func TestNewConsulDefaultsToNopLogger(t *testing.T) {
	r, err := NewConsul("127.0.0.1:8500", nil)
	require.NoError(t, err)
	assert.NotNil(t, r.logger)
}
