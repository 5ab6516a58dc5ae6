package points

import "testing"

func TestSignatureFoldsCaseAndWhitespace(t *testing.T) {
	a := Signature("  Own a CAT  ", []string{" Meow "})
	b := Signature("own a cat", []string{"meow"})
	if a != b {
		t.Fatalf("signatures differ: %q vs %q", a, b)
	}
}

func TestSignatureDecodesEntities(t *testing.T) {
	got := Signature("Cats &amp; dogs", nil)
	if got != "cats & dogs" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestSignatureSkipsEmptyParts(t *testing.T) {
	got := Signature("Main", []string{"", "  ", "sub"})
	if got != "main sub" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestPointAndStatePointSignaturesAgree(t *testing.T) {
	p := Point{MainContent: "The sky is Blue", SubPoints: []string{"very blue"}}
	if p.Signature() != p.ToState().Signature() {
		t.Fatalf("point and state signatures differ")
	}
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash("main", []string{"x", "y"})
	b := ContentHash("main", []string{"x", "y"})
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if ContentHash("main", []string{"x"}) == a {
		t.Fatal("expected different content to hash differently")
	}
}
