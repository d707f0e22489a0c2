package validator

import "testing"

type zipRequest struct {
	Zip string `validate:"zip5"`
}

func TestZip5Tag(t *testing.T) {
	val := New()

	if err := val.Struct(zipRequest{Zip: "10001"}); err != nil {
		t.Fatalf("expected 10001 to be valid, got %v", err)
	}
	for _, bad := range []string{"1000", "100011", "1000a", "10001-1234"} {
		if err := val.Struct(zipRequest{Zip: bad}); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestOmitemptyZip5AllowsBlank(t *testing.T) {
	val := New()
	type req struct {
		Zip string `validate:"omitempty,zip5"`
	}
	if err := val.Struct(req{}); err != nil {
		t.Fatalf("expected blank zip to pass, got %v", err)
	}
}
