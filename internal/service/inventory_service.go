package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vbonduro/equipinv/internal/domain"
	"github.com/vbonduro/equipinv/internal/report"
	"github.com/vbonduro/equipinv/internal/store"
	"github.com/vbonduro/equipinv/internal/transfer"
)

// equipmentRepository is the subset of store.EquipmentStore that
// InventoryService requires.
type equipmentRepository interface {
	Insert(ctx context.Context, e domain.Equipment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	UpdateLocation(ctx context.Context, id int64, loc domain.Location) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f store.Filter) ([]*domain.Equipment, error)
	ReplaceAll(ctx context.Context, items []domain.Equipment, policy store.IDPolicy) (int, error)
	Summarize(ctx context.Context) ([]store.Summary, error)
}

// InventoryService is the single owner of the equipment store. Calls are
// serialized, so one service may be shared by several goroutines.
type InventoryService struct {
	mu        sync.Mutex
	equipment equipmentRepository
	logger    *slog.Logger
}

func NewInventoryService(equipment equipmentRepository, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		equipment: equipment,
		logger:    logger,
	}
}

// Register validates the form fields and stores a new record. Any id in f is
// ignored.
func (s *InventoryService) Register(ctx context.Context, f domain.Fields) (*domain.Equipment, error) {
	f.ID = 0
	e, err := f.Build()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.equipment.Insert(ctx, e)
	if err != nil {
		s.logger.Error("failed to register equipment", "kind", e.Kind(), "location", e.Location.String(), "error", err)
		return nil, fmt.Errorf("failed to register equipment: %w", err)
	}
	e.ID = id

	s.logger.Info("equipment registered", "id", id, "kind", e.Kind(), "location", e.Location.String())
	return &e, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.equipment.Get(ctx, id)
}

// Relocate moves a record. It reports false when id does not exist.
func (s *InventoryService) Relocate(ctx context.Context, id int64, loc domain.Location) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.equipment.UpdateLocation(ctx, id, loc)
	if err != nil {
		return false, fmt.Errorf("failed to relocate equipment %d: %w", id, err)
	}
	if !ok {
		s.logger.Debug("relocate: equipment not found", "id", id)
		return false, nil
	}

	s.logger.Info("equipment relocated", "id", id, "location", loc.String())
	return true, nil
}

// Remove deletes a record. It reports false when id does not exist.
func (s *InventoryService) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.equipment.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove equipment %d: %w", id, err)
	}
	if ok {
		s.logger.Info("equipment removed", "id", id)
	}
	return ok, nil
}

// List returns the records matching f. An empty sort key keeps the store's
// location order.
func (s *InventoryService) List(ctx context.Context, f store.Filter, sortKey domain.SortKey) ([]*domain.Equipment, error) {
	s.mu.Lock()
	items, err := s.equipment.List(ctx, f)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if sortKey != "" {
		domain.SortEquipment(items, sortKey)
	}
	return items, nil
}

// Export writes every record as a JSON dump and returns how many were written.
func (s *InventoryService) Export(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.List(ctx, store.Filter{}, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list equipment for export: %w", err)
	}

	if err := transfer.Encode(w, items); err != nil {
		return 0, err
	}

	s.logger.Info("equipment exported", "count", len(items))
	return len(items), nil
}

// Import replaces the whole inventory with the records of a JSON dump.
// policy decides whether ids in the dump are kept.
func (s *InventoryService) Import(ctx context.Context, r io.Reader, policy store.IDPolicy) (int, error) {
	items, err := transfer.Decode(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.equipment.ReplaceAll(ctx, items, policy)
	if err != nil {
		s.logger.Error("failed to import equipment", "count", len(items), "policy", policy, "error", err)
		return 0, fmt.Errorf("failed to import equipment: %w", err)
	}

	s.logger.Info("equipment imported", "count", n, "policy", policy)
	return n, nil
}

// Report renders the records matching f for printing.
func (s *InventoryService) Report(ctx context.Context, w io.Writer, format report.Format, f store.Filter) (int, error) {
	items, err := s.List(ctx, f, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list equipment for report: %w", err)
	}

	if err := report.Write(w, items, format); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Stats returns count and total value per building and kind.
func (s *InventoryService) Stats(ctx context.Context) ([]store.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.equipment.Summarize(ctx)
}
