// Package types provides type definitions for structured data used throughout the fragrance-customizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Category is one of the six fixed olfactory families.
type Category string

// Category constants
const (
	CategoryCitrus Category = "citrus"
	CategoryFloral Category = "floral"
	CategoryWoody  Category = "woody"
	CategoryMusky  Category = "musky"
	CategoryFruity Category = "fruity"
	CategorySpicy  Category = "spicy"
)

// Categories lists every category in canonical order. Anything that iterates
// over categories (tie-breaking, map traversal) uses this order.
var Categories = [...]Category{
	CategoryCitrus,
	CategoryFloral,
	CategoryWoody,
	CategoryMusky,
	CategoryFruity,
	CategorySpicy,
}

// Index returns the canonical position of the category, or -1 if unknown.
func (c Category) Index() int {
	for i, candidate := range Categories {
		if candidate == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Opposite returns the antagonist category used for "decrease" preferences.
func (c Category) Opposite() Category {
	switch c {
	case CategoryCitrus:
		return CategoryWoody
	case CategoryWoody:
		return CategoryCitrus
	case CategoryFloral:
		return CategorySpicy
	case CategorySpicy:
		return CategoryFloral
	case CategoryMusky:
		return CategoryFruity
	case CategoryFruity:
		return CategoryMusky
	default:
		return c
	}
}

// ParseCategory converts a string into a Category, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
