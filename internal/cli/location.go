package cli

import (
	"errors"
	"fmt"
	"os"

	mandel "github.com/marben/deepzoom"
	"github.com/marben/deepzoom/viewport"
)

var ErrUnknownLocation = errors.New("unknown location")

// ResolveLocation finds name in the YAML location file, or among the
// built-in landmarks when file is empty. An empty name picks the first
// location of the file.
func ResolveLocation(name, file string) (viewport.Location, error) {
	if file == "" {
		if l, ok := mandel.Landmark(name); ok {
			return l, nil
		}
		return viewport.Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	f, err := os.Open(file)
	if err != nil {
		return viewport.Location{}, err
	}
	defer f.Close()
	locs, err := viewport.LoadLocations(f)
	if err != nil {
		return viewport.Location{}, fmt.Errorf("%s: %w", file, err)
	}
	for _, l := range locs {
		if name == "" || l.Name == name {
			return l, nil
		}
	}
	return viewport.Location{}, fmt.Errorf("%w: %q in %s", ErrUnknownLocation, name, file)
}
