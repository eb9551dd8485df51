package logging

import "github.com/rs/zerolog"

// DispatcherLogger adapts a zerolog.Logger to the small leveled
// interface the command dispatcher takes.
type DispatcherLogger struct {
	zl zerolog.Logger
}

// NewDispatcherLogger wraps the given zerolog.Logger.
func NewDispatcherLogger(zl zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{zl: zl}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug().Fields(pairsToFields(keysAndValues)).Msg(msg)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info().Fields(pairsToFields(keysAndValues)).Msg(msg)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error().Fields(pairsToFields(keysAndValues)).Msg(msg)
}

// pairsToFields folds slog-style key/value pairs into a zerolog field
// map. Non-string keys and a trailing odd value are dropped.
func pairsToFields(pairs []any) map[string]any {
	fields := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			fields[key] = pairs[i+1]
		}
	}
	return fields
}
