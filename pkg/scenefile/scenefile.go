// Package scenefile parses YAML scene documents into descriptor trees,
// so scenes can be authored and validated outside Go code.
//
// A document is a single node with optional props, key, and children:
//
//	kind: container
//	props: {pad: 4}
//	children:
//	  - kind: sprite
//	    key: hero
//	    props: {x: 10, y: 20}
//	  - kind: text
//	    props: {text: "score"}
package scenefile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zwade/scenic/pkg/scene"
)

// nodeDoc is the YAML shape of one descriptor node.
type nodeDoc struct {
	Kind     string         `yaml:"kind"`
	Key      any            `yaml:"key"`
	Props    map[string]any `yaml:"props"`
	Children []nodeDoc      `yaml:"children"`
}

// Parse reads one YAML scene document from r. Unknown YAML fields and
// nodes without a kind are rejected, with the offending node's path in
// the error.
func Parse(r io.Reader) (*scene.Element, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc nodeDoc
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("scenefile: empty document")
		}
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	return buildElement(doc, "$")
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*scene.Element, error) {
	return Parse(bytes.NewReader(data))
}

// Load parses the scene document at path.
func Load(path string) (*scene.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer f.Close()
	el, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, nil
}

func buildElement(doc nodeDoc, path string) (*scene.Element, error) {
	if doc.Kind == "" {
		return nil, fmt.Errorf("scenefile: %s: missing kind", path)
	}
	el := &scene.Element{Kind: doc.Kind, Key: doc.Key}
	if len(doc.Props) > 0 {
		el.Props = make(scene.Props, len(doc.Props))
		for k, v := range doc.Props {
			el.Props[k] = v
		}
	}
	for i, childDoc := range doc.Children {
		child, err := buildElement(childDoc, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}
