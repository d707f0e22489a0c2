package sanitize

import "testing"

func TestLine(t *testing.T) {
	cases := map[string]string{
		"  Acme   Realty ":                 "Acme Realty",
		"<b>Acme</b>\nRealty":              "Acme Realty",
		"Smith &amp; Sons":                 "Smith & Sons",
		"&lt;script&gt;x&lt;/script&gt;ok": "x ok",
		"":                                 "",
	}
	for in, want := range cases {
		if got := Line(in); got != want {
			t.Fatalf("Line(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAddress(t *testing.T) {
	cases := map[string]string{
		"12 Main St ,\n Springfield, , IL 62701": "12 Main St, Springfield, IL 62701",
		" , 1 Loop Rd,":                          "1 Loop Rd",
		"<p>350 5th Ave</p>, New York":           "350 5th Ave, New York",
	}
	for in, want := range cases {
		if got := Address(in); got != want {
			t.Fatalf("Address(%q) = %q, want %q", in, got, want)
		}
	}
}
