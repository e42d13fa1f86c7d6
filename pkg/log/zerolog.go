package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	rperrors "github.com/YuminosukeSato/regpipe/pkg/errors"
)

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetProvider replaces the process-wide provider. Tests use it to capture output.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetLogger returns the default logger of the process-wide provider.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLogger()
}

// GetLoggerWithName returns a component logger from the process-wide provider.
func GetLoggerWithName(name string) Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLoggerWithName(name)
}

// SetupLogger installs a zerolog provider writing to w and routes library warnings
// (ConvergenceWarning, UndefinedMetricWarning) into it. format is "json" or "console".
func SetupLogger(w io.Writer, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	provider := NewZerologProviderWithWriter(w, lvl)
	SetProvider(provider)
	routeWarnings(provider)
	return nil
}

func routeWarnings(p LoggerProvider) {
	warnLogger := p.GetLoggerWithName("warnings")
	rperrors.SetZerologWarnFunc(func(warning error) {
		warnLogger.Warn(warning.Error(), "warning", warning, ErrorCodeKey, ErrorCode(warning))
	})
}

// ErrorCode classifies err into one of the Error* codes, or "" when it matches none.
func ErrorCode(err error) string {
	var (
		notFitted   *rperrors.NotFittedError
		dimension   *rperrors.DimensionError
		convergence *rperrors.ConvergenceWarning
		undefined   *rperrors.UndefinedMetricWarning
		configErr   *rperrors.ConfigurationError
		dataFormat  *rperrors.DataFormatError
		unsupported *rperrors.UnsupportedModelError
		fitErr      *rperrors.FitError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, rperrors.ErrSingularMatrix):
		return ErrorSingularMatrix
	case errors.As(err, &convergence):
		return ErrorConvergence
	case errors.As(err, &undefined):
		return ErrorUndefinedMetric
	case errors.As(err, &notFitted):
		return ErrorNotFitted
	case errors.As(err, &dimension):
		return ErrorDimensionMismatch
	case errors.As(err, &configErr):
		return ErrorConfiguration
	case errors.As(err, &dataFormat):
		return ErrorDataFormat
	case errors.As(err, &unsupported):
		return ErrorUnsupportedModel
	case errors.As(err, &fitErr):
		return ErrorFitFailed
	default:
		return ""
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, rperrors.NewConfigurationError("LOG_LEVEL", "unknown log level", level)
	}
}

// ToLogLevel is ParseLevel for trusted input; it panics on an unknown level.
func ToLogLevel(level string) Level {
	lvl, err := ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
	return lvl
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider on top of zerolog.
type ZerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter creates a provider writing to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{logger: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{logger: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel. Loggers handed out earlier keep their level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(toZerologLevel(level))
}

// ZerologLogger adapts zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	emit(z.logger.Error(), msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ctx = ctx.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.logger.GetLevel() <= toZerologLevel(level)
}

// emit writes fields onto e. A leading error value (odd-length fields) becomes the
// event error plus its stack trace.
func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			e = withError(e, zerolog.ErrorFieldName, err)
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			e = withError(e, key, v)
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

func withError(e *zerolog.Event, key string, err error) *zerolog.Event {
	e = e.AnErr(key, err)
	var marshaler zerolog.LogObjectMarshaler
	if errors.As(err, &marshaler) {
		e = e.Object(key+".detail", marshaler)
	}
	if code := ErrorCode(err); code != "" {
		e = e.Str(ErrorCodeKey, code)
	}
	if stack := extractStacktrace(err); stack != "" {
		e = e.Str(StacktraceKey, stack)
	}
	return e
}

// extractStacktrace returns the first safe detail recorded by cockroachdb/errors,
// which holds the stack captured by WithStack.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
