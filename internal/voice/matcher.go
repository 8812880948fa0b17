package voice

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Matcher picks the command an utterance refers to.
// Match returns the index into commands of the first match.
type Matcher interface {
	Match(input string, commands []Command) (int, bool)
}

// Matcher names accepted by NewMatcher.
const (
	MatcherSubstring = "substring"
	MatcherToken     = "token"
)

// NewMatcher returns the matcher registered under name.
// An empty name selects the substring matcher.
func NewMatcher(name string) (Matcher, error) {
	switch name {
	case "", MatcherSubstring:
		return SubstringMatcher{}, nil
	case MatcherToken:
		return TokenMatcher{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, name)
}

// Normalize trims and lowercases an utterance or phrase.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SubstringMatcher matches when the phrase occurs in the input or the input
// occurs in the phrase. The first registered match wins. Blank input never
// matches, since the empty string is a substring of every phrase.
type SubstringMatcher struct{}

// Match implements Matcher.
func (SubstringMatcher) Match(input string, commands []Command) (int, bool) {
	in := Normalize(input)
	if in == "" {
		return 0, false
	}
	for i, c := range commands {
		phrase := Normalize(c.Phrase)
		if phrase == "" {
			continue
		}
		if strings.Contains(in, phrase) || strings.Contains(phrase, in) {
			return i, true
		}
	}
	return 0, false
}

// TokenMatcher matches when every word of the phrase appears as a whole
// word in the input, in any order. "turn on lights" does not match
// "turn on the light".
type TokenMatcher struct{}

// Match implements Matcher.
func (TokenMatcher) Match(input string, commands []Command) (int, bool) {
	words := tokens(input)
	if len(words) == 0 {
		return 0, false
	}
	for i, c := range commands {
		want := tokens(c.Phrase)
		if len(want) == 0 {
			continue
		}
		if !slices.ContainsFunc(want, func(w string) bool { return !slices.Contains(words, w) }) {
			return i, true
		}
	}
	return 0, false
}

func tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
