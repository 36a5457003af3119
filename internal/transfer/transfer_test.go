package transfer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/equipinv/internal/domain"
)

func sample(t *testing.T) []*domain.Equipment {
	t.Helper()
	tbl, err := domain.NewTable(50000, domain.MustLocation(domain.BuildingHateigsvegur, 2, 2), 4)
	require.NoError(t, err)
	tbl.ID = 1
	chr, err := domain.NewChair(12000, domain.MustLocation(domain.BuildingHafnarfjordur, 1, 23), domain.ChairComfort)
	require.NoError(t, err)
	chr.ID = 2
	prj, err := domain.NewProjector(180000, domain.MustLocation(domain.BuildingSkolavorduholt, 3, 10), 3200)
	require.NoError(t, err)
	prj.ID = 5
	return []*domain.Equipment{&tbl, &chr, &prj}
}

func TestEncodeShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample(t)[:2]))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(1), got["version"])

	items := got["items"].([]any)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "Table", first["kind"])
	assert.Equal(t, float64(50000), first["value_isk"])
	assert.Equal(t, map[string]any{"house": "H", "floor": float64(2), "room": float64(2)}, first["location"])
	assert.Equal(t, float64(4), first["seats"])
	assert.Nil(t, first["chair_kind"])
	assert.Nil(t, first["lumens"])

	second := items[1].(map[string]any)
	assert.Equal(t, "Haegindastoll", second["chair_kind"])
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.JSONEq(t, `{"version": 1, "items": []}`, buf.String())
}

func TestRoundTrip(t *testing.T) {
	items := sample(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, items))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(items))
	for i := range items {
		assert.Equal(t, *items[i], decoded[i])
	}
}

func TestDecodeBareArrayAndLegacyNames(t *testing.T) {
	input := `[
		{"kind": "chair", "value_isk": 8000, "location": {"house": "ha", "floor": 0, "room": 7}, "chair_kind": "Skólastóll"},
		{"id": null, "kind": "Projector", "value_isk": 0, "location": {"house": "S", "floor": 9, "room": 99}, "lumens": 1500}
	]`

	items, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domain.ChairDetails{ChairKind: domain.ChairSchool}, items[0].Details)
	assert.Equal(t, "HA-007", items[0].Location.String())
	assert.False(t, items[0].HasID())
	assert.Equal(t, domain.ProjectorDetails{Lumens: 1500}, items[1].Details)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{
			name:    "not json",
			input:   `{"version": 1,`,
			message: "invalid transfer document",
		},
		{
			name:    "unsupported version",
			input:   `{"version": 2, "items": []}`,
			message: "unsupported version 2",
		},
		{
			name:    "missing items",
			input:   `{"version": 1}`,
			message: "invalid transfer document",
		},
		{
			name:    "room above maximum",
			input:   `[{"kind": "Table", "value_isk": 1, "location": {"house": "H", "floor": 1, "room": 100}, "seats": 2}]`,
			message: "invalid transfer document",
		},
		{
			name:    "negative value",
			input:   `[{"kind": "Table", "value_isk": -5, "location": {"house": "H", "floor": 1, "room": 1}, "seats": 2}]`,
			message: "invalid transfer document",
		},
		{
			name:    "table without seats",
			input:   `{"version": 1, "items": [{"kind": "Table", "value_isk": 1, "location": {"house": "H", "floor": 1, "room": 1}}]}`,
			message: "item 0: invalid equipment: Table requires seats",
		},
		{
			name:    "unknown house",
			input:   `[{"kind": "Table", "value_isk": 1, "location": {"house": "X", "floor": 1, "room": 1}, "seats": 1}]`,
			message: `unknown building code "X"`,
		},
		{
			name:    "unknown kind",
			input:   `[{"kind": "Sofa", "value_isk": 1, "location": {"house": "H", "floor": 1, "room": 1}}]`,
			message: `unknown kind "Sofa"`,
		},
		{
			name:    "trailing data",
			input:   `[] []`,
			message: "trailing data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
