package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/go-rawtext/marker"
)

// MarkerFile is a marker sidecar: markers positioned in the whole
// document, in bytes.
type MarkerFile struct {
	Markers []MarkerSpec `yaml:"markers"`
}

// MarkerSpec is one marker as written in a sidecar file.
type MarkerSpec struct {
	Kind  string `yaml:"kind"`
	Pos   int    `yaml:"pos"`
	Text  string `yaml:"text,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value,omitempty"`
}

// LoadMarkers reads a marker sidecar file.
func LoadMarkers(path string) ([]marker.Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ms, err := ParseMarkers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

// ParseMarkers decodes a marker sidecar document.
func ParseMarkers(data []byte) ([]marker.Marker, error) {
	var f MarkerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make([]marker.Marker, 0, len(f.Markers))
	for i, s := range f.Markers {
		k, err := marker.ParseKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		if s.Pos < 0 {
			return nil, fmt.Errorf("marker %d: negative position %d", i, s.Pos)
		}
		out = append(out, marker.Marker{
			Kind:     k,
			Position: s.Pos,
			Text:     s.Text,
			Name:     s.Name,
			Value:    s.Value,
		})
	}
	return out, nil
}

// EncodeMarkers renders markers as a sidecar document.
func EncodeMarkers(ms []marker.Marker) ([]byte, error) {
	f := MarkerFile{Markers: make([]MarkerSpec, len(ms))}
	for i, m := range ms {
		f.Markers[i] = MarkerSpec{
			Kind:  m.Kind.String(),
			Pos:   m.Position,
			Text:  m.Text,
			Name:  m.Name,
			Value: m.Value,
		}
	}
	return yaml.Marshal(&f)
}

// WriteMarkers writes markers to a sidecar file.
func WriteMarkers(path string, ms []marker.Marker) error {
	data, err := EncodeMarkers(ms)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
