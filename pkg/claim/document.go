package claim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a claim document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads a single claim from a JSON or YAML file.
func LoadFile(path string) (*Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatForPath(path))
}

// LoadBatchFile reads a document holding either one claim or a list of claims.
func LoadBatchFile(path string) ([]*Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBatch(data, FormatForPath(path))
}

// Decode parses a single claim document.
func Decode(data []byte, format Format) (*Claim, error) {
	var c Claim
	if err := unmarshal(data, format, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeBatch parses a document holding one claim or a list of claims.
func DecodeBatch(data []byte, format Format) ([]*Claim, error) {
	isList, err := isListDocument(data, format)
	if err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	if !isList {
		c, err := Decode(data, format)
		if err != nil {
			return nil, err
		}
		return []*Claim{c}, nil
	}

	var claims []*Claim
	if err := unmarshal(data, format, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func unmarshal(data []byte, format Format, v any) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported claim document format %q", format)
	}
	if err != nil {
		// Type mismatches on fees or dates surface here.
		return &ValidationError{Field: "document", Reason: err.Error()}
	}
	return nil
}

func isListDocument(data []byte, format Format) (bool, error) {
	if format == FormatJSON {
		trimmed := bytes.TrimSpace(data)
		return len(trimmed) > 0 && trimmed[0] == '[', nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return false, err
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0].Kind == yaml.SequenceNode, nil
	}
	return false, nil
}
