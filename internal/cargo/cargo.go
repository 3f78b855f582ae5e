// Package cargo defines the shipping containers moved between ports and ships.
//
// A Container is a plain value: it is created once by New and never mutated.
// Ownership moves between a port's unassigned pool and a ship's hold by
// copying the value, so no two locations ever share mutable state.
package cargo

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// HeavyThreshold is the weight above which a container is no longer Basic.
const HeavyThreshold = 3000.0

// Category classifies a container. Refrigerated and Liquid are subtypes of
// Heavy: they count against the heavy sub-limit as well as their own.
type Category int

const (
	Basic Category = iota
	Heavy
	Refrigerated
	Liquid
)

// categoryNames is indexed by Category.
var categoryNames = [...]string{"basic", "heavy", "refrigerated", "liquid"}

// consumptionRates holds the per-unit-weight consumption rate of each category.
var consumptionRates = [...]float64{2.5, 3.0, 5.0, 4.0}

// String returns the lower-case category name.
func (c Category) String() string {
	if c < Basic || c > Liquid {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Rate returns the consumption rate constant for the category.
func (c Category) Rate() float64 {
	if c < Basic || c > Liquid {
		return 0
	}
	return consumptionRates[c]
}

// IsHeavy reports whether the category is Heavy or one of its subtypes.
func (c Category) IsHeavy() bool {
	return c == Heavy || c == Refrigerated || c == Liquid
}

// ParseCategory converts a category name back to a Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return Basic, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// MarshalText implements encoding.TextMarshaler so snapshots store names.
func (c Category) MarshalText() ([]byte, error) {
	if c < Basic || c > Liquid {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Container is a single cargo unit.
type Container struct {
	ID       string   `json:"id" toml:"id"`
	Weight   float64  `json:"weight" toml:"weight"`
	Category Category `json:"category" toml:"category"`
}

// New builds a container from its raw attributes. Weight decides first: at or
// below HeavyThreshold the container is Basic whatever the special code says.
// Above it, "R" yields Refrigerated, "L" yields Liquid and an absent code
// yields plain Heavy. Any other code is rejected.
func New(id string, weight float64, special string) (Container, error) {
	if weight <= 0 {
		return Container{}, fmt.Errorf("container %s: %w (got %g)", id, ErrInvalidWeight, weight)
	}
	c := Container{ID: id, Weight: weight, Category: Basic}
	if weight <= HeavyThreshold {
		return c, nil
	}
	switch strings.ToUpper(strings.TrimSpace(special)) {
	case "":
		c.Category = Heavy
	case "R":
		c.Category = Refrigerated
	case "L":
		c.Category = Liquid
	default:
		return Container{}, fmt.Errorf("container %s: %w: special code %q", id, ErrInvalidCategory, special)
	}
	return c, nil
}

// Consumption returns the category rate multiplied by the weight.
func (c Container) Consumption() float64 {
	return c.Category.Rate() * c.Weight
}

// Equal reports structural equality: same category and same weight. The ID
// does not take part, so two distinct containers can compare equal.
func (c Container) Equal(other Container) bool {
	return c.Category == other.Category && c.Weight == other.Weight
}

// String implements fmt.Stringer.
func (c Container) String() string {
	return fmt.Sprintf("%s container %s (%g)", c.Category, c.ID, c.Weight)
}

// CompareID orders container identifiers. Identifiers that are both integers
// compare numerically so that "2" sorts before "10"; anything else compares
// as text, with numeric identifiers first.
func CompareID(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// SortByID sorts containers in place by ascending identifier.
func SortByID(cs []Container) {
	slices.SortStableFunc(cs, func(a, b Container) int {
		return CompareID(a.ID, b.ID)
	})
}

// Index returns the position of the container with the given ID, or -1.
func Index(cs []Container, id string) int {
	return slices.IndexFunc(cs, func(c Container) bool { return c.ID == id })
}
