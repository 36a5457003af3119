package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/equipinv/internal/domain"
)

func TestIntegrityErrorsOnBadRows(t *testing.T) {
	tests := []struct {
		name    string
		insert  string
		message string
	}{
		{
			name:    "table without seats",
			insert:  `INSERT INTO equipment (kind, value_isk, building, floor, room) VALUES ('Table', 1, 'H', 2, 2)`,
			message: "Table requires seats",
		},
		{
			name:    "unknown chair kind",
			insert:  `INSERT INTO equipment (kind, value_isk, building, floor, room, chair_kind) VALUES ('Chair', 1, 'H', 2, 2, 'Throne')`,
			message: `unknown chair kind "Throne"`,
		},
		{
			name:    "projector carrying seats",
			insert:  `INSERT INTO equipment (kind, value_isk, building, floor, room, seats, lumens) VALUES ('Projector', 1, 'H', 2, 2, 4, 3000)`,
			message: "Projector does not take seats",
		},
		{
			name:    "unknown building",
			insert:  `INSERT INTO equipment (kind, value_isk, building, floor, room, seats) VALUES ('Table', 1, 'X', 2, 2, 4)`,
			message: `unknown building code "X"`,
		},
		{
			name:    "room out of range",
			insert:  `INSERT INTO equipment (kind, value_isk, building, floor, room, seats) VALUES ('Table', 1, 'H', 2, 250, 4)`,
			message: "exceeds maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openTestDB(t)
			s := NewEquipmentStore(d)
			ctx := context.Background()

			result, err := d.Exec(tt.insert)
			require.NoError(t, err)
			id, err := result.LastInsertId()
			require.NoError(t, err)

			_, err = s.Get(ctx, id)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIntegrity)
			assert.False(t, errors.Is(err, domain.ErrValidation))
			assert.Contains(t, err.Error(), tt.message)

			_, err = s.ListAll(ctx)
			assert.ErrorIs(t, err, ErrIntegrity)
		})
	}
}

func setupMockStore(t *testing.T) (sqlmock.Sqlmock, *EquipmentStore) {
	t.Helper()
	d, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return mock, NewEquipmentStore(d)
}

func TestGetUnknownDiscriminatorIsIntegrityError(t *testing.T) {
	mock, s := setupMockStore(t)

	rows := sqlmock.NewRows(equipmentColumns).
		AddRow(3, "Sofa", 1000, "H", 2, 2, 3, nil, nil)
	mock.ExpectQuery(`SELECT (.+) FROM equipment WHERE id = \?`).
		WithArgs(3).
		WillReturnRows(rows)

	got, err := s.Get(context.Background(), 3)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), `unknown kind "Sofa"`)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStorageError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM equipment`).
		WithArgs(1).
		WillReturnError(sql.ErrConnDone)

	got, err := s.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListStorageError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM equipment WHERE kind = \? ORDER BY building, floor, room, kind, id`).
		WithArgs("Chair").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.ListByKind(context.Background(), domain.KindChair)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "disk I/O error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListScansRowsFromDriver(t *testing.T) {
	mock, s := setupMockStore(t)

	rows := sqlmock.NewRows(equipmentColumns).
		AddRow(1, "Chair", 9000, "H", 2, 2, nil, "Skolastoll", nil).
		AddRow(2, "Table", 50000, "H", 2, 2, 4, nil, nil)
	mock.ExpectQuery(`SELECT (.+) FROM equipment WHERE building = \? AND floor = \? AND room = \?`).
		WithArgs("H", 2, 2).
		WillReturnRows(rows)

	items, err := s.ListByRoom(context.Background(), domain.MustLocation(domain.BuildingHateigsvegur, 2, 2))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ChairDetails{ChairKind: domain.ChairSchool}, items[0].Details)
	assert.Equal(t, domain.TableDetails{Seats: 4}, items[1].Details)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStorageError(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`DELETE FROM equipment WHERE id = \?`).
		WithArgs(4).
		WillReturnError(errors.New("database is locked"))

	ok, err := s.Delete(context.Background(), 4)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocationNoRowsAffected(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`UPDATE equipment SET building = \?, floor = \?, room = \? WHERE id = \?`).
		WithArgs("S", 1, 5, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.UpdateLocation(context.Background(), 8, domain.MustLocation(domain.BuildingSkolavorduholt, 1, 5))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM equipment`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO equipment`).WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	e, err := domain.NewTable(1, domain.MustLocation(domain.BuildingHateigsvegur, 1, 1), 2)
	require.NoError(t, err)

	_, err = s.ReplaceAll(context.Background(), []domain.Equipment{e}, ReassignIDs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}
