// Package yaml provides a YAML [domain.Codec] implementation keeping the order
// of mapping keys.
package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/vinicius-lino-figueiredo/kvdoc/adapter/data"
	"github.com/vinicius-lino-figueiredo/kvdoc/domain"
	"gopkg.in/yaml.v3"
)

// ContentType is the MIME type of the encoded data.
const ContentType = "application/yaml"

// yamlCodec implements domain.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() domain.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return ContentType
}

// Encode writes m as a YAML mapping. The document is built as a node tree so
// the key order survives.
func (c *yamlCodec) Encode(m domain.Mapping) ([]byte, error) {
	if m == nil {
		return nil, domain.ErrTargetNil
	}
	n, err := mappingNode(m)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{n}})
}

func mappingNode(m domain.Mapping) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.Iter() {
		vn, err := valueNode(v)
		if err != nil {
			return nil, err
		}
		kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		n.Content = append(n.Content, kn, vn)
	}
	return n, nil
}

func valueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case domain.Mapping:
		return mappingNode(t)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, itm := range t {
			in, err := valueNode(itm)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, in)
		}
		return n, nil
	case json.Number:
		v = data.Number(t)
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// Decode reads a YAML document holding a mapping. Timestamps are kept as text.
func (c *yamlCodec) Decode(b []byte) (domain.Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		errCodec := domain.ErrCodec{ContentType: ContentType, Reason: "invalid document"}
		return nil, fmt.Errorf("%w: %w", errCodec, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, domain.ErrCodec{ContentType: ContentType, Reason: "expected a single document"}
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, domain.ErrCodec{ContentType: ContentType, Reason: "expected mapping"}
	}
	return readMapping(root)
}

func readMapping(n *yaml.Node) (domain.Mapping, error) {
	m := data.NewMapping()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolveAlias(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			return nil, domain.ErrCodec{ContentType: ContentType, Reason: "mapping keys must be scalars"}
		}
		v, err := readNode(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		m.Set(k.Value, v)
	}
	return m, nil
}

func readNode(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return readMapping(n)
	case yaml.SequenceNode:
		l := make([]any, 0, len(n.Content))
		for _, itm := range n.Content {
			v, err := readNode(itm)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
