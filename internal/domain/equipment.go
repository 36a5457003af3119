package domain

import (
	"fmt"
	"strings"
)

// Kind discriminates the equipment variants.
type Kind int

const (
	KindTable Kind = iota + 1
	KindChair
	KindProjector
)

// Kinds returns every equipment kind.
func Kinds() []Kind {
	return []Kind{KindTable, KindChair, KindProjector}
}

// String returns the discriminator stored in the database and in JSON dumps.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "Table"
	case KindChair:
		return "Chair"
	case KindProjector:
		return "Projector"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	return k >= KindTable && k <= KindProjector
}

// ParseKind accepts the discriminator in any letter case.
func ParseKind(s string) (Kind, error) {
	switch fold(s) {
	case "table":
		return KindTable, nil
	case "chair":
		return KindChair, nil
	case "projector":
		return KindProjector, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidKind, strings.TrimSpace(s))
}

// KindFromDiscriminator is the strict inverse of Kind.String.
func KindFromDiscriminator(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ChairKind is the kind of a chair.
type ChairKind int

const (
	ChairComfort ChairKind = iota + 1
	ChairSchool
	ChairOffice
	ChairOther
)

func ChairKinds() []ChairKind {
	return []ChairKind{ChairComfort, ChairSchool, ChairOffice, ChairOther}
}

// Code returns the stable storage code. The codes are the ones existing
// databases and exports already contain.
func (c ChairKind) Code() string {
	switch c {
	case ChairComfort:
		return "Haegindastoll"
	case ChairSchool:
		return "Skolastoll"
	case ChairOffice:
		return "Skrifstofustoll"
	case ChairOther:
		return "Annad"
	}
	return ""
}

func (c ChairKind) String() string {
	switch c {
	case ChairComfort:
		return "comfort"
	case ChairSchool:
		return "school"
	case ChairOffice:
		return "office"
	case ChairOther:
		return "other"
	}
	return fmt.Sprintf("ChairKind(%d)", int(c))
}

func (c ChairKind) Valid() bool {
	return c >= ChairComfort && c <= ChairOther
}

var chairKindAliases = map[string]ChairKind{
	"comfort":         ChairComfort,
	"haegindastoll":   ChairComfort,
	"haegi":           ChairComfort,
	"school":          ChairSchool,
	"skolastoll":      ChairSchool,
	"office":          ChairOffice,
	"skrifstofustoll": ChairOffice,
	"skrifsto":        ChairOffice,
	"other":           ChairOther,
	"annad":           ChairOther,
}

// ParseChairKind is lenient: it accepts storage codes, English names and
// Icelandic names with or without accents.
func ParseChairKind(s string) (ChairKind, error) {
	if c, ok := chairKindAliases[fold(s)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: unknown chair kind %q", ErrInvalidChairKind, strings.TrimSpace(s))
}

// ChairKindFromCode accepts only exact storage codes.
func ChairKindFromCode(code string) (ChairKind, bool) {
	for _, c := range ChairKinds() {
		if c.Code() == code {
			return c, true
		}
	}
	return 0, false
}

// Details is the kind-specific part of an equipment record. It is
// implemented only by TableDetails, ChairDetails and ProjectorDetails; code
// that switches on it handles exactly those three.
type Details interface {
	Kind() Kind
	validate() error
}

type TableDetails struct {
	Seats int
}

func (TableDetails) Kind() Kind { return KindTable }

func (d TableDetails) validate() error {
	if d.Seats <= 0 {
		return fmt.Errorf("%w: Table seats must be positive, got %d", ErrInvalidEquipment, d.Seats)
	}
	return nil
}

type ChairDetails struct {
	ChairKind ChairKind
}

func (ChairDetails) Kind() Kind { return KindChair }

func (d ChairDetails) validate() error {
	if !d.ChairKind.Valid() {
		return fmt.Errorf("%w: Chair has unknown chair kind %d", ErrInvalidEquipment, int(d.ChairKind))
	}
	return nil
}

type ProjectorDetails struct {
	Lumens int
}

func (ProjectorDetails) Kind() Kind { return KindProjector }

func (d ProjectorDetails) validate() error {
	if d.Lumens <= 0 {
		return fmt.Errorf("%w: Projector lumens must be positive, got %d", ErrInvalidEquipment, d.Lumens)
	}
	return nil
}

// Equipment is one inventoried item. ID is zero until the store assigns one.
// All fields are comparable, so two records are equal exactly when == holds.
type Equipment struct {
	ID       int64
	Value    int64
	Location Location
	Details  Details
}

func NewTable(value int64, loc Location, seats int) (Equipment, error) {
	return newEquipment(value, loc, TableDetails{Seats: seats})
}

func NewChair(value int64, loc Location, kind ChairKind) (Equipment, error) {
	return newEquipment(value, loc, ChairDetails{ChairKind: kind})
}

func NewProjector(value int64, loc Location, lumens int) (Equipment, error) {
	return newEquipment(value, loc, ProjectorDetails{Lumens: lumens})
}

func newEquipment(value int64, loc Location, d Details) (Equipment, error) {
	e := Equipment{Value: value, Location: loc, Details: d}
	if err := e.Validate(); err != nil {
		return Equipment{}, err
	}
	return e, nil
}

// Kind returns the variant of the record, or zero if Details is unset.
func (e Equipment) Kind() Kind {
	if e.Details == nil {
		return 0
	}
	return e.Details.Kind()
}

func (e Equipment) HasID() bool {
	return e.ID > 0
}

func (e Equipment) Validate() error {
	if e.Details == nil {
		return fmt.Errorf("%w: missing kind", ErrInvalidEquipment)
	}
	if e.ID < 0 {
		return fmt.Errorf("%w: id %d must not be negative", ErrInvalidEquipment, e.ID)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: value %d must not be negative", ErrInvalidEquipment, e.Value)
	}
	if err := e.Location.Validate(); err != nil {
		return err
	}
	return e.Details.validate()
}

// Relocated returns a copy of e at loc. Identity, kind and value are kept.
func (e Equipment) Relocated(loc Location) Equipment {
	e.Location = loc
	return e
}

// Fields flattens e into its form representation.
func (e Equipment) Fields() Fields {
	f := Fields{
		ID:       e.ID,
		Kind:     e.Kind(),
		Value:    e.Value,
		Location: e.Location,
	}
	switch d := e.Details.(type) {
	case TableDetails:
		f.Seats = &d.Seats
	case ChairDetails:
		f.ChairKind = &d.ChairKind
	case ProjectorDetails:
		f.Lumens = &d.Lumens
	case nil:
	default:
		panic(fmt.Sprintf("domain: unhandled details type %T", d))
	}
	return f
}

// Fields is the flat shape an item arrives in from a form, a JSON dump or a
// database row: a kind plus optional attributes, of which exactly the one
// belonging to Kind must be set.
type Fields struct {
	ID        int64
	Kind      Kind
	Value     int64
	Location  Location
	Seats     *int
	ChairKind *ChairKind
	Lumens    *int
}

// Build validates f and returns the matching Equipment variant.
func (f Fields) Build() (Equipment, error) {
	var d Details
	switch f.Kind {
	case KindTable:
		if f.Seats == nil {
			return Equipment{}, fmt.Errorf("%w: Table requires seats", ErrInvalidEquipment)
		}
		d = TableDetails{Seats: *f.Seats}
	case KindChair:
		if f.ChairKind == nil {
			return Equipment{}, fmt.Errorf("%w: Chair requires chair kind", ErrInvalidEquipment)
		}
		d = ChairDetails{ChairKind: *f.ChairKind}
	case KindProjector:
		if f.Lumens == nil {
			return Equipment{}, fmt.Errorf("%w: Projector requires lumens", ErrInvalidEquipment)
		}
		d = ProjectorDetails{Lumens: *f.Lumens}
	default:
		return Equipment{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidKind, int(f.Kind))
	}

	if f.Seats != nil && f.Kind != KindTable {
		return Equipment{}, fmt.Errorf("%w: %s does not take seats", ErrInvalidEquipment, f.Kind)
	}
	if f.ChairKind != nil && f.Kind != KindChair {
		return Equipment{}, fmt.Errorf("%w: %s does not take chair kind", ErrInvalidEquipment, f.Kind)
	}
	if f.Lumens != nil && f.Kind != KindProjector {
		return Equipment{}, fmt.Errorf("%w: %s does not take lumens", ErrInvalidEquipment, f.Kind)
	}

	e := Equipment{ID: f.ID, Value: f.Value, Location: f.Location, Details: d}
	if err := e.Validate(); err != nil {
		return Equipment{}, err
	}
	return e, nil
}
