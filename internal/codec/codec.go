package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sentinel/internal/domain"
)

// Codec reads and writes sentinel documents in one format
type Codec interface {
	// Export writes the store inventory
	Export(inv *domain.Inventory, w io.Writer) error
	// ParseFrameworks reads a compliance framework catalog
	ParseFrameworks(r io.Reader) (*domain.FrameworkDocument, error)
	Format() string
	ContentType() string
}

// ForFormat returns the codec for a format name
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	return ForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}
