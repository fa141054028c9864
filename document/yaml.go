package document

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// parseYAML converts the YAML node tree to JSON, keeping mapping order, and
// decodes that.
func parseYAML(data []byte, cfg parseConfig) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", cfg.filename, err)
	}

	var buf bytes.Buffer
	if err := yamlToJSON(&root, &buf); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.filename, err)
	}
	return parseJSON(buf.Bytes(), cfg)
}

func yamlToJSON(n *yaml.Node, buf *bytes.Buffer) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		return yamlToJSON(n.Content[0], buf)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := marshalString(key.Value)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := yamlToJSON(value, buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := yamlToJSON(item, buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.AliasNode:
		return yamlToJSON(n.Alias, buf)

	case yaml.ScalarNode:
		return yamlScalarToJSON(n, buf)

	default:
		return fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func yamlScalarToJSON(n *yaml.Node, buf *bytes.Buffer) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			buf.WriteString(strconv.FormatBool(b))
			return nil
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			buf.WriteString(strconv.FormatInt(i, 10))
			return nil
		}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			return nil
		}
	}
	s, err := marshalString(n.Value)
	if err != nil {
		return err
	}
	buf.Write(s)
	return nil
}
