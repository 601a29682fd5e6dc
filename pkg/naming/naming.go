// Package naming derives link file names from package identifiers.
//
// Resolution is pure string work: a friendly name from descriptor metadata
// wins when present, otherwise the last dot-separated segment of the
// reverse-domain identifier is used. Prefix, postfix and lowercasing are
// applied on top to form the final link file name.
package naming

import (
	"strings"
	"unicode"
)

// Resolver holds the naming options applied to every derived name.
type Resolver struct {
	// Prefix is prepended verbatim to the resolved name.
	Prefix string
	// Postfix is appended verbatim to the resolved name.
	Postfix string
	// ToLower lowercases the resolved name (not the prefix or postfix).
	ToLower bool
}

// Resolve derives the human-friendly name for a package.
// When friendly is non-empty it is used with internal whitespace replaced
// by underscores, so the result is a single filesystem path component.
// Otherwise the last dot-separated segment of identifier is used; an
// identifier with no dots resolves to itself.
func (r Resolver) Resolve(identifier, friendly string) string {
	name := friendly
	if name == "" {
		name = lastSegment(identifier)
	} else {
		name = replaceWhitespace(name)
	}
	if r.ToLower {
		name = strings.ToLower(name)
	}
	return name
}

// Decorate wraps an already-resolved name with the prefix and postfix.
func (r Resolver) Decorate(resolved string) string {
	return r.Prefix + resolved + r.Postfix
}

// LinkName returns the final link file name: prefix + resolved + postfix.
func (r Resolver) LinkName(identifier, friendly string) string {
	return r.Decorate(r.Resolve(identifier, friendly))
}

func lastSegment(identifier string) string {
	if idx := strings.LastIndex(identifier, "."); idx >= 0 {
		return identifier[idx+1:]
	}
	return identifier
}

func replaceWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}
