package temporal

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/log"
)

// LogAdapter routes Temporal SDK logs through zerolog.
type LogAdapter struct {
	logger zerolog.Logger
}

var (
	_ log.Logger     = (*LogAdapter)(nil)
	_ log.WithLogger = (*LogAdapter)(nil)
)

func NewLogAdapter(logger zerolog.Logger) *LogAdapter {
	return &LogAdapter{
		logger: logger.With().Str("component", "temporal").Logger(),
	}
}

// fields turns SDK keyvals into a zerolog field map. A trailing key without a
// value is kept with a nil value.
func fields(keyvals []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		var val interface{}
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		out[key] = val
	}
	return out
}

func (a *LogAdapter) Debug(msg string, keyvals ...interface{}) {
	a.logger.Debug().Fields(fields(keyvals)).Msg(msg)
}

func (a *LogAdapter) Info(msg string, keyvals ...interface{}) {
	a.logger.Info().Fields(fields(keyvals)).Msg(msg)
}

func (a *LogAdapter) Warn(msg string, keyvals ...interface{}) {
	a.logger.Warn().Fields(fields(keyvals)).Msg(msg)
}

func (a *LogAdapter) Error(msg string, keyvals ...interface{}) {
	a.logger.Error().Fields(fields(keyvals)).Msg(msg)
}

// With returns a child adapter carrying keyvals on every entry.
func (a *LogAdapter) With(keyvals ...interface{}) log.Logger {
	return &LogAdapter{logger: a.logger.With().Fields(fields(keyvals)).Logger()}
}
