package viewport

import (
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/marben/deepzoom/apfloat"
)

// Location is a named view stored as decimal strings, so coordinates with
// thousands of digits survive a round trip through a file.
type Location struct {
	Name    string `yaml:"name"`
	CenterX string `yaml:"center_x"`
	CenterY string `yaml:"center_y"`
	Width   string `yaml:"width"`
	Height  string `yaml:"height,omitempty"`
}

// LoadLocations decodes a YAML list of locations.
func LoadLocations(r io.Reader) ([]Location, error) {
	var locs []Location
	if err := yaml.NewDecoder(r).Decode(&locs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return locs, nil
}

// SaveLocations encodes locations as a YAML list.
func SaveLocations(w io.Writer, locs []Location) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(locs); err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}
	return enc.Close()
}

// Viewport parses the location for a canvas of the given size. A missing
// height is derived from the canvas aspect ratio. Parsing precision is
// taken from the digit count; see Resolve for sizing it to the view.
func (l Location) Viewport(canvasW, canvasH int) (Viewport, error) {
	prec := parsePrec(l.CenterX, l.CenterY, l.Width, l.Height)
	var (
		v   Viewport
		err error
	)
	if v.CenterX, err = apfloat.Parse(l.CenterX, prec); err != nil {
		return Viewport{}, fmt.Errorf("location %q: center_x: %w", l.Name, err)
	}
	if v.CenterY, err = apfloat.Parse(l.CenterY, prec); err != nil {
		return Viewport{}, fmt.Errorf("location %q: center_y: %w", l.Name, err)
	}
	if v.Width, err = apfloat.Parse(l.Width, prec); err != nil {
		return Viewport{}, fmt.Errorf("location %q: width: %w", l.Name, err)
	}
	if l.Height == "" {
		v.Height = v.Width.MulFloat64(float64(canvasH) / float64(canvasW))
	} else if v.Height, err = apfloat.Parse(l.Height, prec); err != nil {
		return Viewport{}, fmt.Errorf("location %q: height: %w", l.Name, err)
	}
	if err := v.Validate(); err != nil {
		return Viewport{}, fmt.Errorf("location %q: %w", l.Name, err)
	}
	return v, nil
}

// parsePrec allots ~3.33 bits per decimal digit plus a float64 mantissa.
func parsePrec(ss ...string) uint {
	n := 0
	for _, s := range ss {
		n = max(n, len(s))
	}
	return uint(math.Ceil(float64(n)*math.Log2(10))) + 64
}
