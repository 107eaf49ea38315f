package harness

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fprecon/internal/ir"
)

// componentsJSON renders a record's components as JSON. A string scalar is
// raw JSON and passes through untouched; anything else is converted in
// document order.
func componentsJSON(n *yaml.Node) ([]byte, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" {
		return []byte(n.Value), nil
	}
	return appendNode(nil, n)
}

func appendNode(dst []byte, n *yaml.Node) ([]byte, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return append(dst, "null"...), nil
		}
		return appendNode(dst, n.Content[0])

	case yaml.AliasNode:
		return appendNode(dst, n.Alias)

	case yaml.MappingNode:
		dst = append(dst, '{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = ir.AppendQuoted(dst, key.Value)
			dst = append(dst, ':')
			var err error
			if dst, err = appendNode(dst, n.Content[i+1]); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil

	case yaml.SequenceNode:
		dst = append(dst, '[')
		for i, item := range n.Content {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendNode(dst, item); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil

	case yaml.ScalarNode:
		return appendScalar(dst, n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func appendScalar(dst []byte, n *yaml.Node) ([]byte, error) {
	switch n.ShortTag() {
	case "!!null":
		return append(dst, "null"...), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		if b {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: %s has no JSON form", n.Line, n.Value)
		}
		return append(dst, ir.FormatNumber(f)...), nil
	case "!!str":
		return ir.AppendQuoted(dst, n.Value), nil
	}
	return nil, fmt.Errorf("line %d: unsupported scalar tag %s", n.Line, n.ShortTag())
}
