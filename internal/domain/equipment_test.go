package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func chairPtr(c ChairKind) *ChairKind { return &c }

var h202 = MustLocation(BuildingHateigsvegur, 2, 2)

func TestFieldsBuild(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		expected Details
	}{
		{
			name:     "table",
			fields:   Fields{Kind: KindTable, Value: 50000, Location: h202, Seats: intPtr(4)},
			expected: TableDetails{Seats: 4},
		},
		{
			name:     "chair",
			fields:   Fields{Kind: KindChair, Value: 12000, Location: h202, ChairKind: chairPtr(ChairOffice)},
			expected: ChairDetails{ChairKind: ChairOffice},
		},
		{
			name:     "projector",
			fields:   Fields{Kind: KindProjector, Value: 150000, Location: h202, Lumens: intPtr(3000)},
			expected: ProjectorDetails{Lumens: 3000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.fields.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.Details)
			assert.Equal(t, tt.fields.Kind, e.Kind())
			assert.Equal(t, tt.fields.Value, e.Value)
			assert.Equal(t, h202, e.Location)
			assert.False(t, e.HasID())

			assert.Equal(t, tt.fields, e.Fields())
		})
	}
}

func TestFieldsBuildRejects(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		message string
	}{
		{
			name:    "table without seats",
			fields:  Fields{Kind: KindTable, Location: h202},
			message: "Table requires seats",
		},
		{
			name:    "chair without chair kind",
			fields:  Fields{Kind: KindChair, Location: h202},
			message: "Chair requires chair kind",
		},
		{
			name:    "projector without lumens",
			fields:  Fields{Kind: KindProjector, Location: h202},
			message: "Projector requires lumens",
		},
		{
			name:    "table with lumens",
			fields:  Fields{Kind: KindTable, Location: h202, Seats: intPtr(2), Lumens: intPtr(100)},
			message: "Table does not take lumens",
		},
		{
			name:    "projector with seats",
			fields:  Fields{Kind: KindProjector, Location: h202, Seats: intPtr(2), Lumens: intPtr(100)},
			message: "Projector does not take seats",
		},
		{
			name:    "zero seats",
			fields:  Fields{Kind: KindTable, Location: h202, Seats: intPtr(0)},
			message: "seats must be positive",
		},
		{
			name:    "negative value",
			fields:  Fields{Kind: KindTable, Value: -1, Location: h202, Seats: intPtr(2)},
			message: "value -1 must not be negative",
		},
		{
			name:    "bad location",
			fields:  Fields{Kind: KindTable, Location: Location{Building: BuildingHateigsvegur, Floor: 1, Room: 500}, Seats: intPtr(2)},
			message: "exceeds maximum",
		},
		{
			name:    "no kind",
			fields:  Fields{Location: h202},
			message: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fields.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConstructors(t *testing.T) {
	table, err := NewTable(50000, h202, 4)
	require.NoError(t, err)
	assert.Equal(t, KindTable, table.Kind())

	chair, err := NewChair(9000, h202, ChairSchool)
	require.NoError(t, err)
	assert.Equal(t, KindChair, chair.Kind())

	projector, err := NewProjector(200000, h202, 4500)
	require.NoError(t, err)
	assert.Equal(t, KindProjector, projector.Kind())

	_, err = NewChair(9000, h202, ChairKind(99))
	assert.ErrorIs(t, err, ErrInvalidEquipment)

	_, err = NewProjector(1, h202, -5)
	assert.ErrorIs(t, err, ErrInvalidEquipment)
}

func TestEquipmentEquality(t *testing.T) {
	a, err := NewTable(50000, h202, 4)
	require.NoError(t, err)
	b, err := NewTable(50000, h202, 4)
	require.NoError(t, err)
	assert.True(t, a == b)

	c, err := NewTable(50000, h202, 6)
	require.NoError(t, err)
	assert.False(t, a == c)
}

func TestRelocated(t *testing.T) {
	e, err := NewProjector(80000, h202, 3000)
	require.NoError(t, err)
	e.ID = 7

	moved := e.Relocated(MustLocation(BuildingSkolavorduholt, 3, 14))
	assert.Equal(t, "S-314", moved.Location.String())
	assert.Equal(t, e.ID, moved.ID)
	assert.Equal(t, e.Value, moved.Value)
	assert.Equal(t, e.Details, moved.Details)
	assert.Equal(t, "H-202", e.Location.String())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		strict, ok := KindFromDiscriminator(k.String())
		require.True(t, ok)
		assert.Equal(t, k, strict)
	}

	k, err := ParseKind("PROJECTOR")
	require.NoError(t, err)
	assert.Equal(t, KindProjector, k)

	_, err = ParseKind("sofa")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, ok := KindFromDiscriminator("table")
	assert.False(t, ok)
}

func TestParseChairKind(t *testing.T) {
	tests := map[string]ChairKind{
		"Hægindastóll":    ChairComfort,
		"haegindastoll":   ChairComfort,
		"comfort":         ChairComfort,
		"Skólastóll":      ChairSchool,
		"school":          ChairSchool,
		"Skrifstofustoll": ChairOffice,
		"office":          ChairOffice,
		"Annað":           ChairOther,
		"other":           ChairOther,
	}
	for input, expected := range tests {
		c, err := ParseChairKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, c, input)
	}

	_, err := ParseChairKind("throne")
	assert.ErrorIs(t, err, ErrInvalidChairKind)
}

func TestChairKindCodes(t *testing.T) {
	for _, c := range ChairKinds() {
		back, ok := ChairKindFromCode(c.Code())
		require.True(t, ok)
		assert.Equal(t, c, back)
	}
	_, ok := ChairKindFromCode("skolastoll")
	assert.False(t, ok)
}
