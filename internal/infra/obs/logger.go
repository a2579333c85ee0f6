package obs

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger configures the slog logger: colored tint output for dev,
// JSON everywhere else.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	var handler slog.Handler
	handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if env == "dev" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	}
	return slog.New(handler)
}
