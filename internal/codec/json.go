package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"smartos-inventory/internal/domain"
)

// JSONCodec renders the Ansible dynamic inventory as JSON.
// Keys are sorted at every level and indentation is fixed, so the same
// document always renders to the same bytes.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "ansible-json"
}

// Export writes the document to w. Nothing is written if encoding fails.
func (c *JSONCodec) Export(doc *domain.InventoryDocument, w io.Writer) error {
	data, err := c.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}

// Marshal renders the document to bytes
func (c *JSONCodec) Marshal(doc *domain.InventoryDocument) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(doc.Tree()); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return buf.Bytes(), nil
}
