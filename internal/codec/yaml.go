package codec

import (
	"fmt"
	"io"

	"sentinel/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// ParseFrameworks reads a framework catalog from YAML
func (c *YAMLCodec) ParseFrameworks(r io.Reader) (*domain.FrameworkDocument, error) {
	var doc domain.FrameworkDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateFrameworks(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Export writes the inventory as YAML
func (c *YAMLCodec) Export(inv *domain.Inventory, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(inv); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}
