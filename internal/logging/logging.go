// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"dhan-signal-trader/internal/config"
	"dhan-signal-trader/internal/models"
)

// NewLogger creates a logger from the logging configuration.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File && cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    100, // megabytes
				MaxBackups: 7,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithSymbol adds a trading symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// LogSignal logs an extracted trade intent.
func LogSignal(logger zerolog.Logger, intent models.TradeIntent) {
	logger.Info().
		Str("event", "signal").
		Str("symbol", intent.TradingSymbol()).
		Str("action", string(intent.Action)).
		Float64("entry_trigger", intent.EntryTrigger).
		Float64("stop_loss", intent.StopLoss).
		Bool("positional", intent.IsPositional).
		Msg("Signal extracted")
}

// LogDrop logs a candidate dropped with a terminal outcome.
func LogDrop(logger zerolog.Logger, outcome models.Outcome, raw string, err error) {
	event := logger.Info().
		Str("event", "drop").
		Str("outcome", string(outcome)).
		Str("raw", raw)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Signal dropped")
}

// LogPlan logs a completed execution plan.
func LogPlan(logger zerolog.Logger, plan models.ExecutionPlan) {
	logger.Info().
		Str("event", "plan").
		Str("symbol", plan.Symbol).
		Str("order_type", string(plan.OrderType)).
		Int("quantity", plan.Quantity).
		Float64("stop_loss", plan.StopLossPrice).
		Float64("target", plan.TargetPrice).
		Float64("trailing_jump", plan.TrailingJump).
		Str("product", string(plan.Product)).
		Msg("Execution plan built")
}
