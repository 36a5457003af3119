package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vbonduro/equipinv/internal/domain"
)

const equipmentTable = "equipment"

var equipmentColumns = []string{
	"id", "kind", "value_isk", "building", "floor", "room", "seats", "chair_kind", "lumens",
}

// listOrder groups rows by building, floor and room, then kind. id makes the
// order total.
var listOrder = []string{"building", "floor", "room", "kind", "id"}

// Filter narrows List. Nil fields match every row.
type Filter struct {
	Building *domain.Building
	Kind     *domain.Kind
	Floor    *int
	Room     *int
}

// IDPolicy decides what ReplaceAll does with ids carried by the records.
type IDPolicy string

const (
	// ReassignIDs drops supplied ids; every record gets a fresh one.
	ReassignIDs IDPolicy = "reassign"
	// PreserveIDs keeps supplied ids and moves the id sequence to the
	// largest of them.
	PreserveIDs IDPolicy = "preserve"
)

func ParseIDPolicy(s string) (IDPolicy, error) {
	switch p := IDPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ReassignIDs, PreserveIDs:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown id policy %q, expected %q or %q", domain.ErrValidation, s, ReassignIDs, PreserveIDs)
}

type EquipmentStore struct {
	db *sql.DB
}

func NewEquipmentStore(db *sql.DB) *EquipmentStore {
	return &EquipmentStore{db: db}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert validates e and stores it as a new row. e.ID is ignored; the
// assigned id is returned.
func (s *EquipmentStore) Insert(ctx context.Context, e domain.Equipment) (int64, error) {
	e.ID = 0
	if err := e.Validate(); err != nil {
		return 0, err
	}
	return insertRow(ctx, s.db, e)
}

func insertRow(ctx context.Context, ex execer, e domain.Equipment) (int64, error) {
	seats, chairKind, lumens := detailColumns(e.Details)

	cols := []string{"kind", "value_isk", "building", "floor", "room", "seats", "chair_kind", "lumens"}
	vals := []any{e.Kind().String(), e.Value, e.Location.Building.Code(), e.Location.Floor, e.Location.Room, seats, chairKind, lumens}
	if e.HasID() {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{e.ID}, vals...)
	}

	query, args, err := squirrel.Insert(equipmentTable).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr("insert equipment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("get last insert id", err)
	}
	return id, nil
}

// Get returns the record with the given id, or nil when there is none.
func (s *EquipmentStore) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	query, args, err := squirrel.Select(equipmentColumns...).
		From(equipmentTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	var r equipmentRow
	err = s.db.QueryRowContext(ctx, query, args...).Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get equipment", err)
	}

	return r.toEquipment()
}

// UpdateLocation moves the record to loc. It reports false when id does not
// exist. No other column is touched.
func (s *EquipmentStore) UpdateLocation(ctx context.Context, id int64, loc domain.Location) (bool, error) {
	if err := loc.Validate(); err != nil {
		return false, err
	}

	query, args, err := squirrel.Update(equipmentTable).
		Set("building", loc.Building.Code()).
		Set("floor", loc.Floor).
		Set("room", loc.Room).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storageErr("update equipment location", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// Delete removes the record. It reports false when id does not exist.
func (s *EquipmentStore) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := squirrel.Delete(equipmentTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storageErr("delete equipment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("get rows affected", err)
	}
	return rowsAffected > 0, nil
}

func (s *EquipmentStore) ListAll(ctx context.Context) ([]*domain.Equipment, error) {
	return s.List(ctx, Filter{})
}

func (s *EquipmentStore) ListByBuilding(ctx context.Context, b domain.Building) ([]*domain.Equipment, error) {
	return s.List(ctx, Filter{Building: &b})
}

func (s *EquipmentStore) ListByKind(ctx context.Context, k domain.Kind) ([]*domain.Equipment, error) {
	return s.List(ctx, Filter{Kind: &k})
}

func (s *EquipmentStore) ListByRoom(ctx context.Context, loc domain.Location) ([]*domain.Equipment, error) {
	return s.List(ctx, Filter{Building: &loc.Building, Floor: &loc.Floor, Room: &loc.Room})
}

func (s *EquipmentStore) ListByFloor(ctx context.Context, b domain.Building, floor int) ([]*domain.Equipment, error) {
	return s.List(ctx, Filter{Building: &b, Floor: &floor})
}

// List returns the records matching f in location order.
func (s *EquipmentStore) List(ctx context.Context, f Filter) ([]*domain.Equipment, error) {
	q := squirrel.Select(equipmentColumns...).From(equipmentTable)

	if f.Building != nil {
		q = q.Where(squirrel.Eq{"building": f.Building.Code()})
	}
	if f.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": f.Kind.String()})
	}
	if f.Floor != nil {
		q = q.Where(squirrel.Eq{"floor": *f.Floor})
	}
	if f.Room != nil {
		q = q.Where(squirrel.Eq{"room": *f.Room})
	}

	query, args, err := q.OrderBy(listOrder...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list equipment", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.Equipment
	for rows.Next() {
		var r equipmentRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, storageErr("scan equipment", err)
		}
		e, err := r.toEquipment()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate equipment", err)
	}

	return items, nil
}

func (s *EquipmentStore) Count(ctx context.Context) (int, error) {
	query, args, err := squirrel.Select("COUNT(*)").From(equipmentTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storageErr("count equipment", err)
	}
	return n, nil
}

// Summary is the number and total value of one kind of equipment in one
// building.
type Summary struct {
	Building   domain.Building
	Kind       domain.Kind
	Count      int
	TotalValue int64
}

// Summarize aggregates the inventory per building and kind.
func (s *EquipmentStore) Summarize(ctx context.Context) ([]Summary, error) {
	query, args, err := squirrel.Select("building", "kind", "COUNT(*)", "COALESCE(SUM(value_isk), 0)").
		From(equipmentTable).
		GroupBy("building", "kind").
		OrderBy("building", "kind").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build summary query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("summarize equipment", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var out []Summary
	for rows.Next() {
		var building, kind string
		var sum Summary
		if err := rows.Scan(&building, &kind, &sum.Count, &sum.TotalValue); err != nil {
			return nil, storageErr("scan summary", err)
		}
		b, ok := domain.BuildingFromCode(building)
		if !ok {
			return nil, fmt.Errorf("%w: unknown building code %q", ErrIntegrity, building)
		}
		k, ok := domain.KindFromDiscriminator(kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrIntegrity, kind)
		}
		sum.Building, sum.Kind = b, k
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate summary", err)
	}
	return out, nil
}

// ReplaceAll deletes every row and inserts items in one transaction, returning
// the number inserted. Under PreserveIDs, records that carry an id keep it and
// the id sequence is set to the largest one, so later inserts continue after
// it; records without an id get fresh ones. Under ReassignIDs all ids are
// fresh. Nothing is changed when any record is invalid.
func (s *EquipmentStore) ReplaceAll(ctx context.Context, items []domain.Equipment, policy IDPolicy) (int, error) {
	if _, err := ParseIDPolicy(string(policy)); err != nil {
		return 0, err
	}

	var withID, withoutID []domain.Equipment
	seen := make(map[int64]int, len(items))
	var maxID int64
	for i, e := range items {
		if policy == ReassignIDs {
			e.ID = 0
		}
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		if !e.HasID() {
			withoutID = append(withoutID, e)
			continue
		}
		if prev, dup := seen[e.ID]; dup {
			return 0, fmt.Errorf("%w: item %d: id %d already used by item %d", domain.ErrInvalidEquipment, i, e.ID, prev)
		}
		seen[e.ID] = i
		maxID = max(maxID, e.ID)
		withID = append(withID, e)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("begin replace", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back replace", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+equipmentTable); err != nil {
		return 0, storageErr("clear equipment", err)
	}

	for _, e := range withID {
		if _, err := insertRow(ctx, tx, e); err != nil {
			return 0, err
		}
	}

	if policy == PreserveIDs && len(withID) > 0 {
		if err := rebaseSequence(ctx, tx, maxID); err != nil {
			return 0, err
		}
	}

	for _, e := range withoutID {
		if _, err := insertRow(ctx, tx, e); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit replace", err)
	}
	return len(items), nil
}

// rebaseSequence points the AUTOINCREMENT counter at maxID.
func rebaseSequence(ctx context.Context, ex execer, maxID int64) error {
	del, delArgs, err := squirrel.Delete("sqlite_sequence").Where(squirrel.Eq{"name": equipmentTable}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sequence query: %w", err)
	}
	if _, err := ex.ExecContext(ctx, del, delArgs...); err != nil {
		return storageErr("reset id sequence", err)
	}

	ins, insArgs, err := squirrel.Insert("sqlite_sequence").Columns("name", "seq").Values(equipmentTable, maxID).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sequence query: %w", err)
	}
	if _, err := ex.ExecContext(ctx, ins, insArgs...); err != nil {
		return storageErr("rebase id sequence", err)
	}
	return nil
}

func detailColumns(d domain.Details) (seats sql.NullInt64, chairKind sql.NullString, lumens sql.NullInt64) {
	switch d := d.(type) {
	case domain.TableDetails:
		seats = sql.NullInt64{Int64: int64(d.Seats), Valid: true}
	case domain.ChairDetails:
		chairKind = sql.NullString{String: d.ChairKind.Code(), Valid: true}
	case domain.ProjectorDetails:
		lumens = sql.NullInt64{Int64: int64(d.Lumens), Valid: true}
	default:
		panic(fmt.Sprintf("store: unhandled details type %T", d))
	}
	return seats, chairKind, lumens
}

type equipmentRow struct {
	id        int64
	kind      string
	value     int64
	building  string
	floor     int
	room      int
	seats     sql.NullInt64
	chairKind sql.NullString
	lumens    sql.NullInt64
}

func (r *equipmentRow) dest() []any {
	return []any{&r.id, &r.kind, &r.value, &r.building, &r.floor, &r.room, &r.seats, &r.chairKind, &r.lumens}
}

func (r *equipmentRow) toEquipment() (*domain.Equipment, error) {
	kind, ok := domain.KindFromDiscriminator(r.kind)
	if !ok {
		return nil, fmt.Errorf("%w: row %d: unknown kind %q", ErrIntegrity, r.id, r.kind)
	}

	building, ok := domain.BuildingFromCode(r.building)
	if !ok {
		return nil, fmt.Errorf("%w: row %d: unknown building code %q", ErrIntegrity, r.id, r.building)
	}

	f := domain.Fields{
		ID:       r.id,
		Kind:     kind,
		Value:    r.value,
		Location: domain.Location{Building: building, Floor: r.floor, Room: r.room},
	}
	if r.seats.Valid {
		seats := int(r.seats.Int64)
		f.Seats = &seats
	}
	if r.chairKind.Valid {
		ck, ok := domain.ChairKindFromCode(r.chairKind.String)
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unknown chair kind %q", ErrIntegrity, r.id, r.chairKind.String)
		}
		f.ChairKind = &ck
	}
	if r.lumens.Valid {
		lumens := int(r.lumens.Int64)
		f.Lumens = &lumens
	}

	e, err := f.Build()
	if err != nil {
		// Validation wording, integrity classification.
		return nil, fmt.Errorf("%w: row %d: %s", ErrIntegrity, r.id, err)
	}
	return &e, nil
}
