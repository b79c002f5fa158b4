// Package variant holds the per-wiki rules for turning a selected table row
// into a flex block cell: which column names the unit and how it is drawn.
package variant

import (
	"sort"
	"sync"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
)

// Variant extracts and renders unit identifiers for one wiki dialect.
type Variant interface {
	// Name is the registry key.
	Name() string
	// UnitName returns the identifier for a split table row, or false if the
	// row has no usable unit column.
	UnitName(columns []string) (string, bool)
	// RenderUnit returns the cell body for an identifier, without the
	// surrounding delimiters.
	RenderUnit(id string) string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Variant{}
	aliases    = map[string]string{}
)

func init() {
	Register(NewPlain(), "taimanin")
	Register(NewIcon(DefaultPalette()), "tonofura")
}

// Register adds v under its name and any aliases, replacing an existing entry.
func Register(v Variant, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[v.Name()] = v
	for _, a := range alias {
		aliases[a] = v.Name()
	}
}

// Get returns the variant registered under name or one of its aliases.
func Get(name string) (Variant, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if target, ok := aliases[name]; ok {
		name = target
	}
	v, ok := registry[name]
	if !ok {
		return nil, errors.NewNotFound("variant", name)
	}
	return v, nil
}

// Names returns the registered variant names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
