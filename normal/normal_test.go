package normal

import "testing"

func TestMarkup(t *testing.T) {
	var cases = []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"<jats:p>We study SARS-CoV-2.</jats:p>", "We study SARS-CoV-2."},
		{"<jats:title>Abstract</jats:title><jats:p>A &amp; B</jats:p>", "Abstract A & B"},
		{"  many \n\t spaces  ", "many spaces"},
		{"x<sub>2</sub>", "x 2"},
		{"<jats:p>higher (p &lt; 0.001) if aged &gt; 65</jats:p>", "higher (p < 0.001) if aged > 65"},
		{"a < b and c > d", "a < b and c > d"},
		{"line<br/>break <p class=\"x\">", "line break"},
	}
	for _, c := range cases {
		if got := Markup(c.in); got != c.want {
			t.Errorf("Markup(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResidual(t *testing.T) {
	var cases = []struct {
		in, want string
	}{
		{"", ""},
		{"p < 0.001 in patients aged > 65 years", "p < 0.001 in patients aged > 65 years"},
		{"x <i>in vitro</i>  results", "x in vitro results"},
		{"A &amp; B", "A &amp; B"},
	}
	for _, c := range cases {
		if got := Residual(c.in); got != c.want {
			t.Errorf("Residual(%q): got %q, want %q", c.in, got, c.want)
		}
	}
	// Cleaning twice must not change decoded text.
	once := Markup("<jats:p>(p &lt; 0.001) aged &gt; 65 years</jats:p>")
	if got := Residual(once); got != once {
		t.Errorf("got %q, want %q", got, once)
	}
}

func TestWhitespace(t *testing.T) {
	if got := Whitespace("Novel\n  coronavirus"); got != "Novel coronavirus" {
		t.Fatalf("got %q", got)
	}
}
