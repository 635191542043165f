// Package strlist stores ordered lists inside plain string values.
//
// A list is the text "[e1,e2,...]" where each element is drawn from
// [A-Za-z0-9 ]. There is no separate list type: a GET on a list key returns
// the bracketed text verbatim.
package strlist

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotArray is returned when a value does not follow the bracketed list grammar.
	ErrNotArray = errors.New("the value is not an array")

	// ErrInvalidElement is returned when an element holds characters outside
	// [A-Za-z0-9 ].
	ErrInvalidElement = errors.New("the element is not valid")
)

// Placement selects the end of the list an element is inserted at.
type Placement int

const (
	// Front inserts at index 0 (LPUSH).
	Front Placement = iota
	// Back appends after the last element (RPUSH).
	Back
)

func (p Placement) String() string {
	if p == Front {
		return "front"
	}
	return "back"
}

var (
	listPattern    = regexp.MustCompile(`^\[\s*([a-zA-Z0-9 ]+,\s*)*[a-zA-Z0-9 ]*\s*\]$`)
	elementPattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
)

// IsList reports whether s follows the bracketed list grammar.
// Surrounding whitespace is ignored.
func IsList(s string) bool {
	return listPattern.MatchString(strings.TrimSpace(s))
}

// Parse returns the elements of the list s. Empty tokens are dropped.
func Parse(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !listPattern.MatchString(s) {
		return nil, ErrNotArray
	}

	interior := s[1 : len(s)-1]
	items := make([]string, 0, strings.Count(interior, ",")+1)
	for _, tok := range strings.Split(interior, ",") {
		if tok != "" {
			items = append(items, tok)
		}
	}
	return items, nil
}

// Format renders items in the bracketed list form.
func Format(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

// Insert adds elem to the list held in current and returns the new text and
// element count.
//
// An empty elem leaves current untouched and reports the existing count.
// Any other elem must match the element grammar or ErrInvalidElement is
// returned.
func Insert(current, elem string, p Placement) (string, int, error) {
	items, err := Parse(current)
	if err != nil {
		return "", 0, err
	}
	if elem == "" {
		return current, len(items), nil
	}
	if !elementPattern.MatchString(elem) {
		return "", 0, ErrInvalidElement
	}

	if p == Front {
		items = append([]string{elem}, items...)
	} else {
		items = append(items, elem)
	}
	return Format(items), len(items), nil
}
