package extract

import "fmt"

// Span is one candidate bet span located in a slip's OCR text. RawLine and
// RawOdds are the verbatim second-pass tokens; normalization happens in the
// field parser.
type Span struct {
	Raw     string
	Score   float64
	RawLine string
	RawOdds string
}

// Format is a single slip-layout extraction strategy. Implementations must
// be deterministic: the same text always yields the same ordered spans.
type Format interface {
	Name() string
	Extract(text string) []Span
}

// Registry keeps a mapping from format names to their implementations.
type Registry struct {
	formats map[string]Format
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: map[string]Format{}}
}

// Register adds or replaces a format implementation.
func (r *Registry) Register(format Format) {
	if r.formats == nil {
		r.formats = map[string]Format{}
	}
	r.formats[format.Name()] = format
}

// Resolve returns a format by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Format, error) {
	if format, ok := r.formats[name]; ok {
		return format, nil
	}
	return nil, fmt.Errorf("slip format %s is not registered", name)
}
