package export

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/peternagy/dbquerytool/internal/types"
)

// writeYAML writes records as a YAML sequence, keeping field order.
func writeYAML(w io.Writer, records []types.Object) error {
	root := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range records {
		root.Content = append(root.Content, yamlNode(types.ObjectOf(rec)))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// yamlNode converts a value into a YAML node.
func yamlNode(v types.Value) *yaml.Node {
	switch v.Kind() {
	case types.ObjectValue:
		obj, _ := v.Object()
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range obj {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				yamlNode(f.Value))
		}
		return n
	case types.ArrayValue:
		items, _ := v.Items()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range items {
			n.Content = append(n.Content, yamlNode(it))
		}
		return n
	case types.StringValue:
		s, _ := v.Str()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case types.IntValue:
		i, _ := v.Int64()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
	case types.FloatValue:
		f, _ := v.Float64()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
	case types.BoolValue:
		b, _ := v.Boolean()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
