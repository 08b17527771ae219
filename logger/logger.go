// Package logger は生成ラウンドの診断メッセージを zap に出力する。
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter receives the diagnostics of a processing round.
type Reporter interface {
	// Note reports normal progress.
	Note(msg string, keysAndValues ...any)
	// Error reports a failure that stops one target or the whole round.
	Error(msg string, err error, keysAndValues ...any)
}

// ZapReporter は zap.SugaredLogger に診断を書き出す Reporter。
type ZapReporter struct {
	log *zap.SugaredLogger
}

var _ Reporter = (*ZapReporter)(nil)

// New は log を出力先とする ZapReporter を作成する。nil の場合は何も出力しない。
func New(log *zap.Logger) *ZapReporter {
	if log == nil {
		log = zap.NewNop()
	}

	return &ZapReporter{log: log.Sugar()}
}

func (r *ZapReporter) Note(msg string, keysAndValues ...any) {
	r.log.Infow(msg, keysAndValues...)
}

func (r *ZapReporter) Error(msg string, err error, keysAndValues ...any) {
	r.log.Errorw(msg, append(keysAndValues, zap.Error(err))...)
}

// NewDevelopment builds the console logger used by the CLI. Debug output is
// enabled when verbose is true.
func NewDevelopment(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.EncoderConfig.CallerKey = zapcore.OmitKey
	}

	return cfg.Build()
}
