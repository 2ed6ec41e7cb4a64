package models

import (
	"encoding/json"
	"strings"
)

type UnitKind int

const (
	UnitMass UnitKind = iota
	UnitVolume
	UnitCount
)

func (u UnitKind) String() string {
	switch u {
	case UnitVolume:
		return "volume"
	case UnitCount:
		return "count"
	default:
		return "mass"
	}
}

func (u UnitKind) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UnitKind) UnmarshalText(text []byte) error {
	*u = ParseUnitKind(string(text))
	return nil
}

// IsCount reports whether quantities of this kind are discrete units
// rather than grams or millilitres.
func (u UnitKind) IsCount() bool {
	return u == UnitCount
}

var unitKinds = map[string]UnitKind{
	"g":    UnitMass,
	"mg":   UnitMass,
	"kg":   UnitMass,
	"克":    UnitMass,
	"公克":   UnitMass,
	"ml":   UnitVolume,
	"l":    UnitVolume,
	"cc":   UnitVolume,
	"毫升":   UnitVolume,
	"顆":    UnitCount,
	"粒":    UnitCount,
	"錠":    UnitCount,
	"膠囊":   UnitCount,
	"次":    UnitCount,
	"pcs":  UnitCount,
	"dose": UnitCount,
	// catalog sheets sometimes spell the kind out
	"mass":    UnitMass,
	"volume":  UnitVolume,
	"count":   UnitCount,
	"tablet":  UnitCount,
	"capsule": UnitCount,
}

// ParseUnitKind maps a catalog unit string to its kind. Unknown or empty
// units are treated as grams.
func ParseUnitKind(unit string) UnitKind {
	if kind, ok := unitKinds[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return kind
	}
	return UnitMass
}

type CategoryKind int

const (
	CategoryFood CategoryKind = iota
	CategoryWater
	CategoryMedicine
	CategorySupplement
	CategoryOther
)

// Category is a closed kind plus the label it was read from, so rows
// written back to the ledger keep the user's wording.
type Category struct {
	Kind  CategoryKind
	Label string
}

const (
	LabelWater      = "水"
	LabelMedicine   = "藥品"
	LabelSupplement = "保養品"
	LabelLeftover   = "剩食"
	LabelFinished   = "完食"
)

var categoryKinds = map[string]CategoryKind{
	LabelWater:      CategoryWater,
	"飲用水":           CategoryWater,
	"water":         CategoryWater,
	LabelMedicine:   CategoryMedicine,
	"medicine":      CategoryMedicine,
	LabelSupplement: CategorySupplement,
	"supplement":    CategorySupplement,
	LabelLeftover:   CategoryOther,
	LabelFinished:   CategoryOther,
	"leftover":      CategoryOther,
	"finished":      CategoryOther,
}

func ParseCategory(label string) Category {
	label = strings.TrimSpace(label)
	kind, ok := categoryKinds[strings.ToLower(label)]
	if !ok {
		kind = CategoryFood
	}
	return Category{Kind: kind, Label: label}
}

func (c Category) String() string {
	return c.Label
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*c = ParseCategory(label)
	return nil
}

func (c Category) IsWater() bool {
	return c.Kind == CategoryWater
}

// IsIntakeExcluded reports whether entries of this category stay out of
// food and water totals.
func (c Category) IsIntakeExcluded() bool {
	return c.Kind == CategoryMedicine || c.Kind == CategorySupplement
}

// Nutrients holds calorie, protein, fat and phosphorus values. Depending
// on context they are sub-totals or reference densities.
type Nutrients struct {
	Calorie    float64 `json:"calorie"`
	Protein    float64 `json:"protein"`
	Fat        float64 `json:"fat"`
	Phosphorus float64 `json:"phosphorus"`
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calorie:    n.Calorie + o.Calorie,
		Protein:    n.Protein + o.Protein,
		Fat:        n.Fat + o.Fat,
		Phosphorus: n.Phosphorus + o.Phosphorus,
	}
}

func (n Nutrients) Scale(f float64) Nutrients {
	return Nutrients{
		Calorie:    n.Calorie * f,
		Protein:    n.Protein * f,
		Fat:        n.Fat * f,
		Phosphorus: n.Phosphorus * f,
	}
}

// ItemDefinition is one row of the item catalog. Reference values are per
// 100 units for mass and volume items and per single unit for count items.
type ItemDefinition struct {
	ID        string    `json:"item_id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Unit      string    `json:"unit"`
	UnitKind  UnitKind  `json:"unit_kind"`
	Reference Nutrients `json:"reference"`
}

// NewItemDefinition builds a catalog item from the raw strings a catalog
// source stores.
func NewItemDefinition(id, name, category, unit string, ref Nutrients) ItemDefinition {
	return ItemDefinition{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Category:  ParseCategory(category),
		Unit:      strings.TrimSpace(unit),
		UnitKind:  ParseUnitKind(unit),
		Reference: ref,
	}
}
