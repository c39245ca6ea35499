package command

import "testing"

func TestTokenize(t *testing.T) {
	tests := []struct {
		in    string
		first string
		args  string
	}{
		{"  /tr  id|Hello   world  ", "/tr", "id|Hello world"},
		{"ping", "ping", ""},
		{"echo\tmulti\nline", "echo", "multi line"},
		{"/translate en|a|b", "/translate", "en|a|b"},
	}
	for _, tt := range tests {
		tok := Tokenize(tt.in)
		if tok.First != tt.first {
			t.Errorf("Tokenize(%q).First = %q, want %q", tt.in, tok.First, tt.first)
		}
		if got := tok.Args(); got != tt.args {
			t.Errorf("Tokenize(%q).Args() = %q, want %q", tt.in, got, tt.args)
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		tok := Tokenize(in)
		if !tok.Empty() {
			t.Errorf("Tokenize(%q) should be empty", in)
		}
		if len(tok.Rest) != 0 || tok.Args() != "" {
			t.Errorf("Tokenize(%q) should have no remainder", in)
		}
	}
}
