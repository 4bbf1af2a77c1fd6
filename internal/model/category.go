package model

import (
	"fmt"
	"strings"
)

// Category is the closed set of content kinds a caller can ask for.
//
// WHY A NAMED TYPE AND NOT A PLAIN STRING?
// Every place that branches on a category takes a Category, and the only way to get
// one from user input is ParseCategory. Unknown names are rejected at the edge instead
// of falling through a chain of string comparisons deep in the ingestion code.
type Category string

const (
	CategoryProgramming Category = "programming"
	CategorySoccer      Category = "soccer"
	CategoryCoffee      Category = "coffee"
	CategoryCooking     Category = "cooking"
)

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategoryProgramming,
	CategorySoccer,
	CategoryCoffee,
	CategoryCooking,
}

// ParseCategory maps a user-supplied name onto a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// Persisted reports whether items of this category are stored in the corpus.
// News categories are persisted, deduplicated and culled; recipe rankings are
// queried live on every request and returned as-is.
func (c Category) Persisted() bool {
	switch c {
	case CategoryProgramming, CategorySoccer:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// RecipeCategory is one entry of the recipe site's category tree.
type RecipeCategory struct {
	ID   string `json:"categoryId"`
	Name string `json:"categoryName"`
	URL  string `json:"categoryUrl,omitempty"`
}
