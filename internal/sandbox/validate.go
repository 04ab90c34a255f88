package sandbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Syntax names the markup a document is validated against
type Syntax string

const (
	SyntaxJSON Syntax = "json"
	SyntaxTOML Syntax = "toml"
	SyntaxYAML Syntax = "yaml"
)

// SyntaxFor picks the validation syntax from a file name's extension.
// Anything that is not JSON or TOML is treated as YAML.
func SyntaxFor(name string) Syntax {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return SyntaxJSON
	case ".toml":
		return SyntaxTOML
	default:
		return SyntaxYAML
	}
}

// ValidateDocument checks that data parses as the syntax implied by name
func ValidateDocument(name string, data []byte) error {
	switch SyntaxFor(name) {
	case SyntaxJSON:
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	case SyntaxTOML:
		var v map[string]interface{}
		if err := toml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return validateYAML(data)
	}
	return nil
}

// validateYAML decodes every document in a possibly multi-document stream
func validateYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	}
}
