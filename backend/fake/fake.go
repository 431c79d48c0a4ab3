// Package fake provides static backends for tests and offline use.
// Each backend is loaded from a snapshot of its configuration and defaults payloads.
package fake

import (
	"embed"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/Zaba505/qiskit-experiments-go/backend"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// ErrUnknownBackend is returned for a name without a fixture
var ErrUnknownBackend = errors.New("unknown fake backend")

// registry maps a backend name to its fixture suffix
var registry = map[string]string{
	"fake_armonk": "armonk",
}

// Armonk returns the single qubit fake_armonk backend
func Armonk() *backend.Backend {
	b, err := Get("fake_armonk")
	if err != nil {
		panic(err)
	}
	return b
}

// Get loads the fake backend with the given name
func Get(name string) (*backend.Backend, error) {
	suffix, ok := registry[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownBackend, name)
	}

	var conf backend.Configuration
	if err := load(fmt.Sprintf("fixtures/conf_%s.json", suffix), &conf); err != nil {
		return nil, err
	}
	var defs backend.Defaults
	if err := load(fmt.Sprintf("fixtures/defs_%s.json", suffix), &defs); err != nil {
		return nil, err
	}

	return backend.New(conf, &defs)
}

// Names returns the names of all fake backends, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func load(path string, v interface{}) error {
	b, err := fixtures.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading fixture %s", path)
	}
	return errors.Wrapf(json.Unmarshal(b, v), "decoding fixture %s", path)
}
