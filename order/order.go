// Package order provides line orderings used to sort text.
//
// An ordering is a plain function returning a negative number when a sorts
// before b, zero when they are equal and a positive number otherwise, the
// same contract as [strings.Compare] and [slices.SortFunc].
package order

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Func compares two lines.
type Func func(a, b string) int

// Names of the orderings accepted by ByName.
const (
	NameLexical               = "lexical"
	NameCaseInsensitive       = "case-insensitive"
	NameWhitespaceInsensitive = "whitespace-insensitive"
)

// Lexical orders lines byte-wise.
func Lexical(a, b string) int {
	return strings.Compare(a, b)
}

// CaseInsensitive orders lines rune by rune, folding each pair to upper case
// and then to lower case before comparing. Lines that are equal ignoring case
// compare as equal.
func CaseInsensitive(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		a, b = a[na:], b[nb:]

		if ra == rb {
			continue
		}
		ua, ub := unicode.ToUpper(ra), unicode.ToUpper(rb)
		if ua == ub {
			continue
		}
		la, lb := unicode.ToLower(ua), unicode.ToLower(ub)
		if la != lb {
			return int(la) - int(lb)
		}
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// WhitespaceInsensitive removes every whitespace rune from both lines and
// compares what is left with CaseInsensitive.
func WhitespaceInsensitive(a, b string) int {
	return CaseInsensitive(stripSpace(a), stripSpace(b))
}

func stripSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ByName returns the ordering registered under name.
func ByName(name string) (Func, error) {
	switch name {
	case NameLexical:
		return Lexical, nil
	case NameCaseInsensitive:
		return CaseInsensitive, nil
	case NameWhitespaceInsensitive:
		return WhitespaceInsensitive, nil
	default:
		return nil, fmt.Errorf("order: unknown ordering %q", name)
	}
}
