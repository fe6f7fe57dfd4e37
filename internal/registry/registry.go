// Package registry holds the static table of known check-in codes.
//
// A Registry is built once at startup (from the built-in defaults or a YAML
// file) and never mutated afterwards, so concurrent readers need no locking.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRegistry is returned when a registry file declares no codes.
var ErrEmptyRegistry = errors.New("registry has no codes")

// Registry maps a code to the label of the person or group it was issued to.
type Registry struct {
	labels map[string]string
}

// file is the on-disk YAML shape:
//
//	codes:
//	  ABC123: user1
//	  XYZ789: user2
type file struct {
	Codes map[string]string `yaml:"codes"`
}

// New copies entries into a new Registry. Codes are trimmed; blank codes are dropped.
func New(entries map[string]string) *Registry {
	labels := make(map[string]string, len(entries))
	for code, label := range entries {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		labels[code] = strings.TrimSpace(label)
	}
	return &Registry{labels: labels}
}

// Default returns the codes the service ships with.
func Default() *Registry {
	return New(map[string]string{
		"ABC123": "user1",
		"XYZ789": "user2",
	})
}

// LoadFile reads a YAML registry document from path.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML registry document.
func Parse(raw []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	r := New(f.Codes)
	if r.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	return r, nil
}

// Lookup returns the label registered for code. It never fails; unknown codes
// report ok=false.
func (r *Registry) Lookup(code string) (label string, ok bool) {
	if r == nil {
		return "", false
	}
	label, ok = r.labels[code]
	return label, ok
}

// Contains reports whether code is registered.
func (r *Registry) Contains(code string) bool {
	_, ok := r.Lookup(code)
	return ok
}

// Len is the number of registered codes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.labels)
}

// Codes lists registered codes in ascending order.
func (r *Registry) Codes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.labels))
	for c := range r.labels {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
