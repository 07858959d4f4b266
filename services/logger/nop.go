package logsvc

import (
	"go.uber.org/zap"

	"github.com/trezcool/darasa/core"
)

// NopLogger discards everything but Fatal, which still exits.
type NopLogger struct {
	std *zap.SugaredLogger
}

var _ core.Logger = (*NopLogger)(nil)

func NewNopLogger() *NopLogger {
	return &NopLogger{std: zap.NewNop().Sugar()}
}

func (l NopLogger) Debug(string, ...interface{}) {}
func (l NopLogger) Info(string, ...interface{})  {}
func (l NopLogger) Warn(string, ...interface{})  {}
func (l NopLogger) Error(string, ...interface{}) {}

func (l NopLogger) Fatal(msg string, args ...interface{}) {
	l.std.Fatalw(msg, args...)
}
