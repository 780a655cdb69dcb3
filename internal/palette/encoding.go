package palette

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the palette as an object keyed by flavor identifier,
// in canonical order.
func (p Palette) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(p.order, func(id string) any { return p.Flavors[id] })
}

// MarshalJSON encodes the flavor with its colors in canonical order.
func (f Flavor) MarshalJSON() ([]byte, error) {
	colors, err := marshalOrderedJSON(f.order, func(id string) any { return f.Colors[id] })
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Name       string          `json:"name"`
		Identifier string          `json:"identifier"`
		Dark       bool            `json:"dark"`
		Light      bool            `json:"light"`
		Colors     json.RawMessage `json:"colors"`
	}{f.Name, f.Identifier, f.Dark, f.Light, colors})
}

func marshalOrderedJSON(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the palette as a mapping keyed by flavor identifier,
// in canonical order.
func (p Palette) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range p.All() {
		v, err := f.MarshalYAML()
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalar(f.Identifier), v.(*yaml.Node))
	}
	return node, nil
}

// MarshalYAML encodes the flavor with its colors in canonical order.
func (f Flavor) MarshalYAML() (any, error) {
	colors := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range f.All() {
		var v yaml.Node
		if err := v.Encode(c); err != nil {
			return nil, err
		}
		colors.Content = append(colors.Content, scalar(c.Identifier), &v)
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range []struct {
		key   string
		value any
	}{
		{"name", f.Name},
		{"identifier", f.Identifier},
		{"dark", f.Dark},
		{"light", f.Light},
	} {
		var v yaml.Node
		if err := v.Encode(field.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalar(field.key), &v)
	}
	node.Content = append(node.Content, scalar("colors"), colors)
	return node, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
