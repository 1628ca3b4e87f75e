package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Token
	}{
		{
			name: "simple sentence",
			text: "El perro corre",
			want: []Token{{"el", 0}, {"perro", 1}, {"corre", 2}},
		},
		{
			name: "punctuation and accents",
			text: "¡Atención! Llegó el AVE, a las 10:30h.",
			want: []Token{{"atención", 0}, {"llegó", 1}, {"el", 2}, {"ave", 3}, {"a", 4}, {"las", 5}, {"10", 6}, {"30h", 7}},
		},
		{
			name: "underscore is a word character",
			text: "foo_bar-baz",
			want: []Token{{"foo_bar", 0}, {"baz", 1}},
		},
		{
			name: "empty",
			text: "  ... ",
			want: []Token{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestTermsKeepsStopWords(t *testing.T) {
	got := Terms("The cat and the hat")
	want := []string{"the", "cat", "and", "the", "hat"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
}
