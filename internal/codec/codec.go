package codec

import (
	"io"

	"smartos-inventory/internal/domain"
)

// Importer decodes guest records from a remote payload
type Importer interface {
	Parse(r io.Reader) ([]domain.GuestRecord, error)
	Format() string
}

// Exporter encodes an assembled inventory document
type Exporter interface {
	Export(doc *domain.InventoryDocument, w io.Writer) error
	Format() string
}
