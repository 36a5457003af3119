// Package transfer reads and writes the JSON dump of the whole inventory.
//
// A dump is {"version": 1, "items": [...]}; a bare array of items is also
// accepted on import. Each item has the shape
//
//	{"id": 4, "kind": "Table", "value_isk": 50000,
//	 "location": {"house": "H", "floor": 2, "room": 2},
//	 "seats": 4, "chair_kind": null, "lumens": null}
//
// which is what earlier versions of the inventory exported, so their files
// import unchanged.
package transfer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/vbonduro/equipinv/internal/domain"
)

// Version is the dump format written by Encode.
const Version = 1

// ErrInvalidDocument is returned when a dump cannot be imported.
var ErrInvalidDocument = fmt.Errorf("%w: invalid transfer document", domain.ErrValidation)

//go:embed schema.json
var schemaJSON string

var documentSchema = jsonschema.MustCompileString("equipinv-dump.json", schemaJSON)

type document struct {
	Version int        `json:"version"`
	Items   []itemJSON `json:"items"`
}

type itemJSON struct {
	ID        *int64       `json:"id"`
	Kind      string       `json:"kind"`
	ValueISK  int64        `json:"value_isk"`
	Location  locationJSON `json:"location"`
	Seats     *int         `json:"seats"`
	ChairKind *string      `json:"chair_kind"`
	Lumens    *int         `json:"lumens"`
}

type locationJSON struct {
	House string `json:"house"`
	Floor int    `json:"floor"`
	Room  int    `json:"room"`
}

// Encode writes items as an indented version 1 dump.
func Encode(w io.Writer, items []*domain.Equipment) error {
	doc := document{Version: Version, Items: make([]itemJSON, 0, len(items))}
	for _, e := range items {
		doc.Items = append(doc.Items, toJSON(*e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	return nil
}

func toJSON(e domain.Equipment) itemJSON {
	f := e.Fields()
	item := itemJSON{
		Kind:     f.Kind.String(),
		ValueISK: f.Value,
		Location: locationJSON{
			House: f.Location.Building.Code(),
			Floor: f.Location.Floor,
			Room:  f.Location.Room,
		},
		Seats:  f.Seats,
		Lumens: f.Lumens,
	}
	if e.HasID() {
		id := e.ID
		item.ID = &id
	}
	if f.ChairKind != nil {
		code := f.ChairKind.Code()
		item.ChairKind = &code
	}
	return item
}

// Decode reads a dump and returns its records. Ids present in the dump are
// kept on the records; whether they survive the import is up to the caller.
func Decode(r io.Reader) ([]domain.Equipment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	if obj, ok := raw.(map[string]any); ok {
		if v, ok := obj["version"].(json.Number); ok && v.String() != fmt.Sprint(Version) {
			return nil, fmt.Errorf("%w: unsupported version %s", ErrInvalidDocument, v)
		}
	}
	if err := documentSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var items []itemJSON
	if _, isArray := raw.([]any); isArray {
		err = json.Unmarshal(data, &items)
	} else {
		var doc document
		err = json.Unmarshal(data, &doc)
		items = doc.Items
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	out := make([]domain.Equipment, 0, len(items))
	for i, item := range items {
		e, err := item.toEquipment()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidDocument)
	}
	return raw, nil
}

func (item itemJSON) toEquipment() (domain.Equipment, error) {
	kind, err := domain.ParseKind(item.Kind)
	if err != nil {
		return domain.Equipment{}, err
	}

	building, err := domain.ParseBuilding(item.Location.House)
	if err != nil {
		return domain.Equipment{}, err
	}

	loc, err := domain.NewLocation(building, item.Location.Floor, item.Location.Room)
	if err != nil {
		return domain.Equipment{}, err
	}

	f := domain.Fields{
		Kind:     kind,
		Value:    item.ValueISK,
		Location: loc,
		Seats:    item.Seats,
		Lumens:   item.Lumens,
	}
	if item.ID != nil {
		f.ID = *item.ID
	}
	if item.ChairKind != nil {
		ck, err := domain.ParseChairKind(*item.ChairKind)
		if err != nil {
			return domain.Equipment{}, err
		}
		f.ChairKind = &ck
	}
	return f.Build()
}
