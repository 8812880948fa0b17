package voice

import (
	"errors"
	"testing"
)

func TestSubstringMatcher(t *testing.T) {
	commands := []Command{
		{ID: "a", Phrase: "turn on the lights"},
		{ID: "b", Phrase: "lights"},
		{ID: "c", Phrase: "  Good Night "},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"exact", "turn on the lights", "a", true},
		{"case and space", "  TURN ON THE LIGHTS ", "a", true},
		{"phrase inside input", "please turn on the lights now", "a", true},
		{"input inside phrase", "on the", "a", true},
		{"first registered wins", "lights", "a", true},
		{"normalised phrase", "good night everyone", "c", true},
		{"no match", "open the garage", "", false},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := SubstringMatcher{}.Match(tt.input, commands)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && commands[idx].ID != tt.wantID {
				t.Errorf("Match(%q) = %s, want %s", tt.input, commands[idx].ID, tt.wantID)
			}
		})
	}
}

func TestTokenMatcher(t *testing.T) {
	commands := []Command{
		{ID: "lights", Phrase: "lights on"},
		{ID: "night", Phrase: "good night"},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"all words any order", "on lights please", "lights", true},
		{"punctuation ignored", "Good night, house!", "night", true},
		{"partial word rejected", "light on", "", false},
		{"substring of phrase rejected", "good", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := TokenMatcher{}.Match(tt.input, commands)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && commands[idx].ID != tt.wantID {
				t.Errorf("Match(%q) = %s, want %s", tt.input, commands[idx].ID, tt.wantID)
			}
		})
	}
}

func TestNewMatcher(t *testing.T) {
	for name, want := range map[string]Matcher{
		"":          SubstringMatcher{},
		"substring": SubstringMatcher{},
		"token":     TokenMatcher{},
	} {
		got, err := NewMatcher(name)
		if err != nil || got != want {
			t.Errorf("NewMatcher(%q) = %T, %v", name, got, err)
		}
	}
	if _, err := NewMatcher("fuzzy"); !errors.Is(err, ErrUnknownMatcher) {
		t.Errorf("NewMatcher(fuzzy) error = %v", err)
	}
}
