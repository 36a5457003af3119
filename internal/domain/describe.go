package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
)

const unassignedID = "unassigned"

// FormatISK renders an amount with space-separated thousands, e.g. "50 000 kr.".
func FormatISK(v int64) string {
	return humanize.FormatInteger("# ###.", int(v)) + " kr."
}

// Describe returns the single line used for listings and printed output.
func Describe(e Equipment) string {
	id := unassignedID
	if e.HasID() {
		id = fmt.Sprintf("%d", e.ID)
	}
	return fmt.Sprintf("%s #%s: %s, value %s, in %s",
		e.Kind(), id, describeDetails(e.Details), FormatISK(e.Value), e.Location.DisplayString())
}

// DetailsText describes only the kind-specific attribute, e.g. "4 seats".
func DetailsText(e Equipment) string {
	return describeDetails(e.Details)
}

func describeDetails(d Details) string {
	switch d := d.(type) {
	case TableDetails:
		if d.Seats == 1 {
			return "1 seat"
		}
		return fmt.Sprintf("%d seats", d.Seats)
	case ChairDetails:
		return fmt.Sprintf("%s chair", d.ChairKind)
	case ProjectorDetails:
		return fmt.Sprintf("%s lumens", humanize.FormatInteger("# ###.", d.Lumens))
	case nil:
		return "no details"
	default:
		panic(fmt.Sprintf("domain: unhandled details type %T", d))
	}
}

// SortKey names a caller-requested ordering.
type SortKey string

const (
	SortByID       SortKey = "id"
	SortByKind     SortKey = "kind"
	SortByLocation SortKey = "location"
	SortByValue    SortKey = "value"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(fold(s)); k {
	case SortByID, SortByKind, SortByLocation, SortByValue:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrValidation, s)
}

// SortEquipment sorts items in place by key. Ties keep their input order.
func SortEquipment(items []*Equipment, key SortKey) {
	var compare func(a, b *Equipment) int
	switch key {
	case SortByID:
		compare = func(a, b *Equipment) int { return cmp.Compare(a.ID, b.ID) }
	case SortByKind:
		compare = func(a, b *Equipment) int { return cmp.Compare(a.Kind().String(), b.Kind().String()) }
	case SortByLocation:
		compare = func(a, b *Equipment) int { return cmp.Compare(a.Location.String(), b.Location.String()) }
	case SortByValue:
		compare = func(a, b *Equipment) int { return cmp.Compare(a.Value, b.Value) }
	default:
		return
	}
	slices.SortStableFunc(items, compare)
}
