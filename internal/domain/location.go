package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Building is one of the school's sites.
type Building int

const (
	BuildingHafnarfjordur Building = iota + 1
	BuildingHateigsvegur
	BuildingSkolavorduholt
)

const (
	MaxFloor = 9
	MaxRoom  = 99
)

var buildingCodes = map[Building]string{
	BuildingHafnarfjordur:  "HA",
	BuildingHateigsvegur:   "H",
	BuildingSkolavorduholt: "S",
}

var buildingNames = map[Building]string{
	BuildingHafnarfjordur:  "Hafnarfjörður",
	BuildingHateigsvegur:   "Háteigsvegur",
	BuildingSkolavorduholt: "Skólavörðuholt",
}

// buildingLookup maps folded codes, names and historical spellings to buildings.
var buildingLookup = map[string]Building{
	"ha":              BuildingHafnarfjordur,
	"hafnarfjordur":   BuildingHafnarfjordur,
	"h":               BuildingHateigsvegur,
	"hateigsvegur":    BuildingHateigsvegur,
	"hateigssvegur":   BuildingHateigsvegur,
	"s":               BuildingSkolavorduholt,
	"skolavorduholt":  BuildingSkolavorduholt,
	"skolavorduhollt": BuildingSkolavorduholt,
}

// Buildings returns every building in display order.
func Buildings() []Building {
	return []Building{BuildingHafnarfjordur, BuildingHateigsvegur, BuildingSkolavorduholt}
}

// Code returns the short code used in location strings and storage.
func (b Building) Code() string {
	return buildingCodes[b]
}

// DisplayName returns the full name shown to users. It is never persisted.
func (b Building) DisplayName() string {
	return buildingNames[b]
}

func (b Building) String() string {
	if c, ok := buildingCodes[b]; ok {
		return c
	}
	return fmt.Sprintf("Building(%d)", int(b))
}

func (b Building) Valid() bool {
	_, ok := buildingCodes[b]
	return ok
}

// ParseBuilding accepts a building code or full name, ignoring case and
// diacritics.
func ParseBuilding(s string) (Building, error) {
	if b, ok := buildingLookup[fold(s)]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("%w: unknown building code %q", ErrInvalidBuilding, strings.TrimSpace(s))
}

// BuildingFromCode is the strict inverse of Code. Storage reads use it so that
// only canonical codes are accepted.
func BuildingFromCode(code string) (Building, bool) {
	for b, c := range buildingCodes {
		if c == code {
			return b, true
		}
	}
	return 0, false
}

// Location identifies a room: building, single-digit floor and room number.
type Location struct {
	Building Building
	Floor    int
	Room     int
}

// NewLocation validates the parts of a location.
func NewLocation(b Building, floor, room int) (Location, error) {
	if !b.Valid() {
		return Location{}, fmt.Errorf("%w: unknown building %d", ErrInvalidBuilding, int(b))
	}
	if floor < 0 || floor > MaxFloor {
		return Location{}, fmt.Errorf("%w: floor %d must be between 0 and %d", ErrInvalidLocation, floor, MaxFloor)
	}
	if room < 0 {
		return Location{}, fmt.Errorf("%w: room %d must not be negative", ErrInvalidLocation, room)
	}
	if room > MaxRoom {
		return Location{}, fmt.Errorf("%w: room %d exceeds maximum %d", ErrInvalidLocation, room, MaxRoom)
	}
	return Location{Building: b, Floor: floor, Room: room}, nil
}

// MustLocation is NewLocation for fixed values known to be valid.
func MustLocation(b Building, floor, room int) Location {
	loc, err := NewLocation(b, floor, room)
	if err != nil {
		panic(err)
	}
	return loc
}

var (
	floorPattern = regexp.MustCompile(`^[0-9]$`)
	roomPattern  = regexp.MustCompile(`^[0-9]{1,3}$`)
)

// ParseLocation parses "<code>-<floor><room>", e.g. "H-202" or "HA-123".
// The first digit after the dash is the floor, the remaining one to three
// digits are the room.
func ParseLocation(s string) (Location, error) {
	text := strings.TrimSpace(s)
	code, digits, ok := strings.Cut(text, "-")
	if !ok {
		return Location{}, fmt.Errorf("%w: %q is not of the form H-202 or HA-123", ErrInvalidLocation, text)
	}

	b, err := ParseBuilding(code)
	if err != nil {
		return Location{}, err
	}

	digits = strings.TrimSpace(digits)
	if digits == "" {
		return Location{}, fmt.Errorf("%w: %q is missing floor and room after '-'", ErrInvalidLocation, text)
	}

	floorText, roomText := digits[:1], digits[1:]
	if !floorPattern.MatchString(floorText) {
		return Location{}, fmt.Errorf("%w: invalid floor %q, expected a single digit", ErrInvalidLocation, floorText)
	}
	if !roomPattern.MatchString(roomText) {
		return Location{}, fmt.Errorf("%w: invalid room %q, expected 1 to 3 digits", ErrInvalidLocation, roomText)
	}

	floor, _ := strconv.Atoi(floorText)
	room, _ := strconv.Atoi(roomText)
	return NewLocation(b, floor, room)
}

// String returns the canonical form with the room zero-padded to two digits.
func (l Location) String() string {
	return fmt.Sprintf("%s-%d%02d", l.Building.Code(), l.Floor, l.Room)
}

// DisplayString is String followed by the building's full name.
func (l Location) DisplayString() string {
	return fmt.Sprintf("%s (%s)", l.String(), l.Building.DisplayName())
}

func (l Location) Validate() error {
	_, err := NewLocation(l.Building, l.Floor, l.Room)
	return err
}
