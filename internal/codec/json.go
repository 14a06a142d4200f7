package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"sentinel/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// ParseFrameworks reads a framework catalog from JSON
func (c *JSONCodec) ParseFrameworks(r io.Reader) (*domain.FrameworkDocument, error) {
	var doc domain.FrameworkDocument
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := validateFrameworks(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Export writes the inventory as indented JSON
func (c *JSONCodec) Export(inv *domain.Inventory, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(inv); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
