package mandel

import (
	"log/slog"

	"github.com/marben/deepzoom/internal/logging"
)

// SetLogger routes the library's log output to l. A nil l silences it.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}
