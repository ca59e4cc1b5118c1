package phpser

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ============================================================
// YAML Bridge
// ============================================================
//
// Converts YAML documents to values, keeping mapping order. Anchored nodes
// and their aliases share one storage cell, so an alias that appears in the
// same sequence or mapping as its anchor serializes as an R: back-reference.
// An alias to an enclosing collection becomes a self-reference.

// FromYAML converts a YAML document to a value using default options.
func FromYAML(data []byte) (*Value, error) {
	return FromYAMLWithOpts(data, DefaultBridgeOpts())
}

// FromYAMLWithOpts converts a YAML document to a value.
func FromYAMLWithOpts(data []byte, opts BridgeOpts) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "phpser: parse YAML")
	}
	c := &yamlConverter{
		opts:   opts,
		cells:  make(map[*yaml.Node]*Cell),
		values: make(map[*yaml.Node]*Value),
	}
	return c.node(&doc, 0)
}

type yamlConverter struct {
	opts   BridgeOpts
	cells  map[*yaml.Node]*Cell  // anchored nodes
	values map[*yaml.Node]*Value // collections under construction or done
}

func (c *yamlConverter) node(n *yaml.Node, depth int) (*Value, error) {
	switch n.Kind {
	case 0:
		return Null(), nil

	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return c.node(n.Content[0], depth)

	case yaml.AliasNode:
		return c.node(n.Alias, depth)

	case yaml.ScalarNode:
		return yamlScalar(n)

	case yaml.SequenceNode, yaml.MappingNode:
		if v, ok := c.values[n]; ok {
			return v, nil
		}
		if c.opts.MaxDepth > 0 && depth >= c.opts.MaxDepth {
			return nil, errors.Wrapf(ErrDepthExceeded, "YAML nesting limit %d", c.opts.MaxDepth)
		}
		if n.Kind == yaml.SequenceNode {
			return c.sequence(n, depth)
		}
		return c.mapping(n, depth)

	default:
		return nil, errors.Errorf("phpser: unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

// cell returns the storage cell for a sequence item or mapping value.
func (c *yamlConverter) cell(n *yaml.Node, depth int) (*Cell, error) {
	target := n
	if n.Kind == yaml.AliasNode {
		target = n.Alias
	}
	if cell, ok := c.cells[target]; ok {
		return cell, nil
	}
	// Register before converting so aliases inside the collection resolve.
	var cell *Cell
	if target.Anchor != "" {
		cell = NewCell(Null())
		c.cells[target] = cell
	}
	v, err := c.node(target, depth+1)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return NewCell(v), nil
	}
	cell.Set(v)
	return cell, nil
}

func (c *yamlConverter) sequence(n *yaml.Node, depth int) (*Value, error) {
	a := NewArray()
	v := Arr(a)
	c.values[n] = v
	for i, item := range n.Content {
		cell, err := c.cell(item, depth)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d: item %d", item.Line, i)
		}
		a.AppendRef(cell)
	}
	return v, nil
}

func (c *yamlConverter) mapping(n *yaml.Node, depth int) (*Value, error) {
	var (
		a   *Array
		obj *Object
		v   *Value
	)
	if c.opts.ObjectsAsStdClass {
		obj = NewStdClass()
		v = Obj(obj)
	} else {
		a = NewArray()
		v = Arr(a)
	}
	c.values[n] = v

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		kv, err := c.node(keyNode, depth+1)
		if err != nil {
			return nil, err
		}
		k, err := KeyOf(kv)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", keyNode.Line)
		}
		cell, err := c.cell(valNode, depth)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d: key %s", keyNode.Line, k)
		}
		if obj != nil {
			obj.Set(k.Name(), cell.Get())
			continue
		}
		a.SetRef(k, cell)
	}
	return v, nil
}

func yamlScalar(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil

	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return Bool(b), nil

	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return Float(f), nil

	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return Float(f), nil

	case "!!binary":
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return Str(s), nil

	default:
		return Str(n.Value), nil
	}
}
