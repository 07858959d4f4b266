package logsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

func TestNewZapLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		conf := &core.Config{Debug: debug, Env: "TEST", Build: "test-build"}

		std, err := NewZapLogger("API", conf)
		require.NoError(t, err)
		assert.Equal(t, "API", std.Desugar().Name())

		logger := NewRollbarLogger(std, conf)
		logger.Enable(false)
		logger.Info("logger ready", map[string]interface{}{"debug": debug})
	}
}
