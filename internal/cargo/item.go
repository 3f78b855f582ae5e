package cargo

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemKind classifies the goods packed into a container.
type ItemKind int

const (
	ItemSmall ItemKind = iota
	ItemHeavy
	ItemRefrigerated
	ItemLiquid
)

var itemKindNames = [...]string{"small", "heavy", "refrigerated", "liquid"}

// String returns the lower-case kind name.
func (k ItemKind) String() string {
	if k < ItemSmall || k > ItemLiquid {
		return "item_kind(" + strconv.Itoa(int(k)) + ")"
	}
	return itemKindNames[k]
}

// ParseItemKind converts a kind name to an ItemKind.
func ParseItemKind(s string) (ItemKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range itemKindNames {
		if n == name {
			return ItemKind(i), nil
		}
	}
	return ItemSmall, fmt.Errorf("%w: %q", ErrUnknownItemKind, s)
}

// Item is a batch of identical goods. Weight is per unit.
type Item struct {
	ID          string
	Kind        ItemKind
	Weight      float64
	Count       int
	ContainerID string
}

// NewItem builds an item from a kind name. It is the only constructor that
// validates: weight must be positive and count at least one.
func NewItem(kind, id string, weight float64, count int, containerID string) (Item, error) {
	k, err := ParseItemKind(kind)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", id, err)
	}
	if weight <= 0 {
		return Item{}, fmt.Errorf("item %s: %w: weight %g", id, ErrInvalidItem, weight)
	}
	if count < 1 {
		return Item{}, fmt.Errorf("item %s: %w: count %d", id, ErrInvalidItem, count)
	}
	return Item{ID: id, Kind: k, Weight: weight, Count: count, ContainerID: containerID}, nil
}

// TotalWeight is the unit weight times the count.
func (i Item) TotalWeight() float64 {
	return i.Weight * float64(i.Count)
}

// Pack builds a container whose weight is the total of items. Every item
// must name the container or leave ContainerID empty.
//
// An empty special code is derived from the goods: refrigerated items make
// an "R" container and liquid items an "L" one; mixing the two needs an
// explicit code. As with New, a packed weight at or below HeavyThreshold
// yields a Basic container regardless.
func Pack(id, special string, items []Item) (Container, error) {
	if len(items) == 0 {
		return Container{}, fmt.Errorf("container %s: %w: no items", id, ErrInvalidItem)
	}
	var (
		total                float64
		refrigerated, liquid bool
	)
	for _, it := range items {
		if it.ContainerID != "" && it.ContainerID != id {
			return Container{}, fmt.Errorf("container %s: %w: item %s belongs to container %s",
				id, ErrInvalidItem, it.ID, it.ContainerID)
		}
		total += it.TotalWeight()
		refrigerated = refrigerated || it.Kind == ItemRefrigerated
		liquid = liquid || it.Kind == ItemLiquid
	}
	if strings.TrimSpace(special) == "" {
		switch {
		case refrigerated && liquid:
			return Container{}, fmt.Errorf("container %s: %w: refrigerated and liquid items need an explicit special code",
				id, ErrInvalidCategory)
		case refrigerated:
			special = "R"
		case liquid:
			special = "L"
		}
	}
	return New(id, total, special)
}
