package bridge

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Neumenon/plist/plist"
)

// ToYAML renders v as a YAML document. Dictionary order is kept, dates are
// !!timestamp scalars, data is !!binary and NaN and infinities use YAML's
// .nan and .inf spellings.
func ToYAML(v *plist.Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{node}}
	return yaml.Marshal(doc)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toYAMLNode(v *plist.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case plist.KindNull:
		return scalar("!!null", "null"), nil
	case plist.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b)), nil
	case plist.KindInteger:
		n, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(n, 10)), nil
	case plist.KindReal:
		f, _ := v.AsReal()
		return scalar("!!float", yamlFloat(f)), nil
	case plist.KindString:
		s, _ := v.AsString()
		node := scalar("!!str", s)
		if s == "" {
			node.Style = yaml.DoubleQuotedStyle
		}
		return node, nil
	case plist.KindDate:
		t, _ := v.AsTime()
		return scalar("!!timestamp", t.Format(time.RFC3339Nano)), nil
	case plist.KindData:
		b, _ := v.AsData()
		return scalar("!!binary", base64.StdEncoding.EncodeToString(b)), nil
	case plist.KindUID:
		if n, err := v.AsUIDUint64(); err == nil {
			return scalar("!!int", strconv.FormatUint(n, 10)), nil
		}
		raw, _ := v.AsUID()
		return scalar("!!binary", base64.StdEncoding.EncodeToString(raw)), nil

	case plist.KindArray, plist.KindSet:
		var elems []*plist.Value
		if v.Kind() == plist.KindSet {
			elems, _ = v.AsSet()
		} else {
			elems, _ = v.AsArray()
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elem := range elems {
			child, err := toYAMLNode(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil

	case plist.KindDict:
		entries, _ := v.AsDict()
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range entries {
			child, err := toYAMLNode(e.Value)
			if err != nil {
				return nil, fmt.Errorf("dict[%q]: %w", e.Key, err)
			}
			m.Content = append(m.Content, scalar("!!str", e.Key), child)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported value kind: %s", v.Kind())
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// FromYAML reads the first document of a YAML stream. Mapping order is
// kept, and scalars are typed by their resolved YAML tag.
func FromYAML(data []byte) (*plist.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return plist.Null(), nil
	}
	return fromYAMLNode(doc.Content[0])
}

func fromYAMLNode(n *yaml.Node) (*plist.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)

	case yaml.SequenceNode:
		items := make([]*plist.Value, 0, len(n.Content))
		for i, child := range n.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items = append(items, item)
		}
		return plist.Array(items...), nil

	case yaml.MappingNode:
		entries := make([]plist.DictEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			item, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("dict[%q]: %w", key, err)
			}
			entries = append(entries, plist.Entry(key, item))
		}
		return plist.Dict(entries...), nil

	case yaml.ScalarNode:
		return fromYAMLScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func fromYAMLScalar(n *yaml.Node) (*plist.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return plist.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return plist.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return plist.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return plist.Real(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return plist.DateFromTime(t), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binary: %w", n.Line, err)
		}
		return plist.Data(b), nil
	default:
		return plist.Str(n.Value), nil
	}
}
