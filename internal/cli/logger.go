package cli

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the relay's debug logger: JSON to stderr in verbose mode,
// otherwise a no-op.
func newLogger(globals *Globals) *zap.Logger {
	if globals == nil || !globals.Verbose {
		return zap.NewNop()
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(globals.Stderr)),
		zap.NewAtomicLevelAt(zap.DebugLevel),
	)
	return zap.New(core).With(zap.String("component", "relay"))
}
