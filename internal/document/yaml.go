package document

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateKey is returned when a mapping declares the same key twice.
	ErrDuplicateKey = errors.New("duplicate mapping key")
	// ErrExcessiveAliasing is returned when alias expansion would build far
	// more values than the source document contains.
	ErrExcessiveAliasing = errors.New("document expands to too many values through aliases")
)

const (
	maxAliasDepth = 64

	// The value budget is the larger of minValueBudget and aliasExpansionRatio
	// times the number of nodes in the source tree.
	minValueBudget      = 10_000
	aliasExpansionRatio = 10
)

// FromYAML decodes a YAML (or JSON) document. An empty input yields Null.
func FromYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("parse YAML: %w", err)
	}
	return FromNode(&root)
}

// FromNode converts a decoded yaml.Node tree into a Value.
func FromNode(node *yaml.Node) (Value, error) {
	c := &converter{remaining: max(minValueBudget, aliasExpansionRatio*countNodes(node))}
	return c.convertNode(node, 0)
}

// countNodes sizes the tree as written, without following aliases.
func countNodes(node *yaml.Node) int {
	if node == nil {
		return 0
	}
	n := 1
	for _, child := range node.Content {
		n += countNodes(child)
	}
	return n
}

// converter tracks how many more values a single conversion may produce.
type converter struct {
	remaining int
}

func (c *converter) convertNode(node *yaml.Node, depth int) (Value, error) {
	if node == nil {
		return Null(), nil
	}
	if node.Kind != yaml.DocumentNode && node.Kind != yaml.AliasNode {
		c.remaining--
		if c.remaining < 0 {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, ErrExcessiveAliasing)
		}
	}

	switch node.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return c.convertNode(node.Content[0], depth)
	case yaml.AliasNode:
		if depth >= maxAliasDepth {
			return Value{}, fmt.Errorf("line %d: alias nesting too deep", node.Line)
		}
		return c.convertNode(node.Alias, depth+1)
	case yaml.ScalarNode:
		return convertScalar(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := c.convertNode(child, depth)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindSequence, items: items}, nil
	case yaml.MappingNode:
		return c.convertMapping(node, depth)
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

func convertScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, fmt.Errorf("line %d: integer %q out of range", node.Line, node.Value)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Float(f), nil
	default:
		return String(node.Value), nil
	}
}

// convertMapping keeps explicit keys in document order. Keys pulled in through
// "<<" merge keys are appended afterwards unless an explicit key shadows them.
func (c *converter) convertMapping(node *yaml.Node, depth int) (Value, error) {
	entries := make([]Entry, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	var merged []Entry

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.ShortTag() == "!!merge" {
			extra, err := c.mergeEntries(valueNode, depth)
			if err != nil {
				return Value{}, err
			}
			merged = append(merged, extra...)
			continue
		}

		key, err := c.convertNode(keyNode, depth)
		if err != nil {
			return Value{}, err
		}
		if key.Kind() == KindSequence || key.Kind() == KindMapping {
			return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		name := key.String()
		if _, dup := seen[name]; dup {
			return Value{}, fmt.Errorf("line %d: %w %q", keyNode.Line, ErrDuplicateKey, name)
		}
		seen[name] = struct{}{}

		value, err := c.convertNode(valueNode, depth)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: name, Value: value})
	}

	for _, e := range merged {
		if _, shadowed := seen[e.Key]; shadowed {
			continue
		}
		seen[e.Key] = struct{}{}
		entries = append(entries, e)
	}

	return Value{kind: KindMapping, entries: entries}, nil
}

func (c *converter) mergeEntries(node *yaml.Node, depth int) ([]Entry, error) {
	source, err := c.convertNode(node, depth)
	if err != nil {
		return nil, err
	}

	switch source.Kind() {
	case KindMapping:
		return source.entries, nil
	case KindSequence:
		var out []Entry
		for _, item := range source.items {
			if item.Kind() != KindMapping {
				return nil, fmt.Errorf("line %d: merge sequence must contain mappings", node.Line)
			}
			out = append(out, item.entries...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", node.Line)
	}
}
