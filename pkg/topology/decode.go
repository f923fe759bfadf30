package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a topology document from JSON bytes.
func Decode(data []byte) (*Topology, error) {
	var t Topology
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	fillEdgeIDs(&t)
	return &t, nil
}

// DecodeYAML parses a topology document from YAML bytes.
func DecodeYAML(data []byte) (*Topology, error) {
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	fillEdgeIDs(&t)
	return &t, nil
}

// ReadFile loads a topology from a file, selecting the format by extension.
// Unknown extensions are treated as JSON.
func ReadFile(filename string) (*Topology, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// fillEdgeIDs synthesizes an id for edges the editor left unnamed so the
// allocator's edge-keyed address map stays unambiguous.
func fillEdgeIDs(t *Topology) {
	for i := range t.Edges {
		if t.Edges[i].ID == "" {
			t.Edges[i].ID = fmt.Sprintf("edge_%s_to_%s_%d", t.Edges[i].From, t.Edges[i].To, i)
		}
	}
}
