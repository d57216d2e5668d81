package cli

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/internal/preview"
	"github.com/marben/deepzoom/session"
)

// ProgressLogger logs phase changes at info level and every other update
// at debug level.
func ProgressLogger(log *logrus.Logger) func(mandel.Progress) {
	var (
		mu   sync.Mutex
		last = mandel.Phase(-1)
	)
	return func(p mandel.Progress) {
		mu.Lock()
		changed := p.Phase != last
		last = p.Phase
		mu.Unlock()

		e := log.WithFields(logrus.Fields{
			"generation": p.Generation,
			"phase":      p.Phase,
			"done":       p.Done,
			"total":      p.Total,
			"elapsed":    p.Elapsed.Round(time.Millisecond),
		})
		if changed {
			e.Info("progress")
		} else {
			e.Debug("progress")
		}
	}
}

// SavePreview writes d as a PNG scaled to width (0 keeps the canvas size).
func SavePreview(d *session.Dataset, path string, width int) error {
	img := preview.Image(d.Pixels(), d.Width, d.Height)
	return preview.WritePNG(path, preview.Scale(img, width))
}
