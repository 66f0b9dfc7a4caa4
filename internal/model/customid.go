package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ElementType is the kind of a custom ID element.
type ElementType string

// Known element types. The string values are the persisted form.
const (
	ElementFixed        ElementType = "fixed"
	ElementRandom20Bit  ElementType = "20-bit random"
	ElementRandom32Bit  ElementType = "32-bit random"
	ElementRandom6Digit ElementType = "6-digit random"
	ElementRandom9Digit ElementType = "9-digit random"
	ElementGUID         ElementType = "guid"
	ElementDateTime     ElementType = "date/time"
	ElementSequence     ElementType = "sequence"
)

var elementAliases = map[string]ElementType{
	"fixed":          ElementFixed,
	"20-bit random":  ElementRandom20Bit,
	"random20bit":    ElementRandom20Bit,
	"32-bit random":  ElementRandom32Bit,
	"random32bit":    ElementRandom32Bit,
	"6-digit random": ElementRandom6Digit,
	"random6digit":   ElementRandom6Digit,
	"9-digit random": ElementRandom9Digit,
	"random9digit":   ElementRandom9Digit,
	"guid":           ElementGUID,
	"date/time":      ElementDateTime,
	"datetime":       ElementDateTime,
	"sequence":       ElementSequence,
}

// ParseElementType resolves a type name case-insensitively.
func ParseElementType(s string) (ElementType, bool) {
	t, ok := elementAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Normalize returns the canonical form of t, or t unchanged if unknown.
func (t ElementType) Normalize() ElementType {
	if canonical, ok := ParseElementType(string(t)); ok {
		return canonical
	}
	return t
}

// Known reports whether t names one of the eight element types.
func (t ElementType) Known() bool {
	_, ok := ParseElementType(string(t))
	return ok
}

// CustomIDElement is one ordered unit of an inventory's custom ID template.
type CustomIDElement struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	Value       string      `json:"value"`
	Description string      `json:"description"`
	Order       int         `json:"order"`
}

// ElementsParseResult is the outcome of reading a persisted element list.
// Elements is always usable. Defaulted is set when the input could not be
// read and an empty list was substituted; Err carries the cause.
type ElementsParseResult struct {
	Elements  []CustomIDElement
	Defaulted bool
	Err       error
}

// ParseCustomIDElements reads a persisted element list. Malformed input
// yields an empty list; it never fails. The result is sorted by Order,
// keeping stored order for ties.
func ParseCustomIDElements(raw string) ElementsParseResult {
	if strings.TrimSpace(raw) == "" {
		return ElementsParseResult{Elements: []CustomIDElement{}}
	}

	var elements []CustomIDElement
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return ElementsParseResult{
			Elements:  []CustomIDElement{},
			Defaulted: true,
			Err:       fmt.Errorf("failed to parse custom id elements: %w", err),
		}
	}
	if elements == nil {
		elements = []CustomIDElement{}
	}
	SortElements(elements)
	return ElementsParseResult{Elements: elements}
}

// SerializeCustomIDElements encodes elements into the persisted form.
func SerializeCustomIDElements(elements []CustomIDElement) (string, error) {
	if elements == nil {
		elements = []CustomIDElement{}
	}
	b, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("failed to serialize custom id elements: %w", err)
	}
	return string(b), nil
}

// SortElements orders elements by Order in place, stable on ties.
func SortElements(elements []CustomIDElement) {
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Order < elements[j].Order
	})
}

// SortedElements returns a sorted copy of elements.
func SortedElements(elements []CustomIDElement) []CustomIDElement {
	out := make([]CustomIDElement, len(elements))
	copy(out, elements)
	SortElements(out)
	return out
}
