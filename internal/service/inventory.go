package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"smartos-inventory/internal/codec"
	"smartos-inventory/internal/domain"
	"smartos-inventory/internal/inventory"
	"smartos-inventory/internal/transport"
)

// ListCommand is the only remote command; both modes run it
const ListCommand = "vmadm lookup -j"

// InventoryService builds Ansible inventories from a SmartOS host
type InventoryService struct {
	transport transport.Transport
	grouper   *inventory.Grouper
	exporter  codec.Exporter
	logger    *slog.Logger
}

// NewInventoryService creates a service on top of t
func NewInventoryService(t transport.Transport, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &InventoryService{
		transport: t,
		grouper:   inventory.NewGrouper(logger),
		exporter:  codec.NewJSONCodec(),
		logger:    logger,
	}
}

// SetExporter changes the output format; JSON is the default
func (s *InventoryService) SetExporter(e codec.Exporter) {
	s.exporter = e
}

// List renders the inventory of every guest on the host
func (s *InventoryService) List(ctx context.Context) ([]byte, error) {
	return s.run(ctx, codec.NewVMAdmCodec(false))
}

// Host renders the inventory scoped to the guest whose resolved name is
// name. The match runs locally so guests named by alias are found too.
func (s *InventoryService) Host(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("empty host name")
	}
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	records, err := codec.NewVMAdmCodec(true).Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	matched := SelectHost(records, name)
	if len(matched) == 0 {
		return nil, &domain.HostNotFoundError{Name: name}
	}

	doc, err := s.assemble(matched)
	if err != nil {
		return nil, err
	}
	return s.render(doc)
}

// SelectHost keeps the records that resolve to name, in payload order
func SelectHost(records []domain.GuestRecord, name string) []domain.GuestRecord {
	var matched []domain.GuestRecord
	for _, r := range records {
		if r.Name == name {
			matched = append(matched, r)
		}
	}
	return matched
}

func (s *InventoryService) fetch(ctx context.Context) (string, error) {
	raw, err := s.transport.Execute(ctx, ListCommand)
	if err != nil {
		return "", err
	}
	s.logger.Debug("received payload", "transport", s.transport.Name(), "bytes", len(raw))
	return raw, nil
}

func (s *InventoryService) run(ctx context.Context, importer codec.Importer) ([]byte, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.Build(raw, importer)
	if err != nil {
		return nil, err
	}
	return s.render(doc)
}

func (s *InventoryService) render(doc *domain.InventoryDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.exporter.Export(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build runs the in-memory stages on a raw payload
func (s *InventoryService) Build(raw string, importer codec.Importer) (*domain.InventoryDocument, error) {
	records, err := importer.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return s.assemble(records)
}

func (s *InventoryService) assemble(records []domain.GuestRecord) (*domain.InventoryDocument, error) {
	result, err := s.grouper.Group(records)
	if err != nil {
		return nil, err
	}

	doc, err := inventory.Assemble(result)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("assembled inventory", "hosts", len(doc.HostVars), "groups", len(doc.Groups))
	return doc, nil
}
