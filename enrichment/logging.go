package enrichment

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a logger at the given level ("debug", "info", "warn",
// "error"). Without extra sinks it is zap's production JSON logger on stderr;
// with sinks, human readable lines go to stdout and every sink.
func NewLogger(level string, sinks ...io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if len(sinks) == 0 {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		return config.Build()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	out := io.MultiWriter(append([]io.Writer{os.Stdout}, sinks...)...)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), lvl)
	return zap.New(core), nil
}
