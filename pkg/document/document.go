// Package document reads and writes card templates as JSON or YAML files.
//
// Files carry a small envelope so the format can evolve:
//
//	{"version": 1, "template": {"id": "...", "name": "...", "tabs": [...]}}
//
// A bare template object (one with a top-level "tabs" key) is accepted on
// read. YAML files hold the same structure; they are converted through
// JSON so that node metadata follows exactly one set of rules.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// Version is the envelope version written by this package.
const Version = 1

// Format selects the encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks the format from a file extension; unknown extensions
// are treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

type envelope struct {
	Version  int            `json:"version"`
	Template *card.Template `json:"template"`
}

// Decode parses data in the given format and validates the result.
func Decode(data []byte, format Format) (*card.Template, error) {
	t, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse decodes data without validating it; [Check] lists what is wrong
// with the result.
func Parse(data []byte, format Format) (*card.Template, error) {
	if format == YAML {
		js, err := yamlToJSON(data)
		if err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse yaml")
		}
		data = js
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse document")
	}

	var t *card.Template
	if _, bare := top["tabs"]; bare {
		t = &card.Template{}
		if err := json.Unmarshal(data, t); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "decode template")
		}
	} else {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "decode document")
		}
		if env.Version > Version {
			return nil, cgerrors.New(cgerrors.ErrCodeUnsupported, "document version %d is newer than %d", env.Version, Version)
		}
		if env.Template == nil {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidFormat, "document has no template")
		}
		t = env.Template
	}
	return t, nil
}

// Encode serializes t in the given format. JSON output is indented.
func Encode(t *card.Template, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{Version: Version, Template: t}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if format == YAML {
		return jsonToYAML(data)
	}
	return append(data, '\n'), nil
}

// Read decodes a template from r.
func Read(r io.Reader, format Format) (*card.Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// Write encodes t to w.
func Write(w io.Writer, t *card.Template, format Format) error {
	data, err := Encode(t, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFile loads a template, choosing the format by extension.
func ReadFile(path string) (*card.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile saves t, choosing the format by extension.
func WriteFile(path string, t *card.Template) error {
	data, err := Encode(t, FormatFor(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// yamlToJSON converts through a yaml.Node so mapping order survives.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, doc.Content[0]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.AliasNode:
		return writeJSON(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(n.Content[i].Value)
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(out)
	default:
		return fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
	return nil
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style &^= yaml.FlowStyle
	}
	if n.Kind == yaml.ScalarNode && n.Style&yaml.DoubleQuotedStyle != 0 && n.Tag == "!!str" {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
