package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	cases := map[string]string{
		"  hello  world  ": "hello world",
		"hello\t\nworld":   "hello world",
		"   ":              "",
		"plain":            "plain",
	}
	for input, expected := range cases {
		if got := TrimAndNormalize(input); got != expected {
			t.Errorf("TrimAndNormalize(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestNormalizeReference_StripsAllWhitespace(t *testing.T) {
	if got := NormalizeReference(" txn- 001 \n"); got != "txn-001" {
		t.Errorf("expected txn-001, got %q", got)
	}
	if got := NormalizeReference("   "); got != "" {
		t.Errorf("expected empty reference, got %q", got)
	}
}

func TestNormalizeIDs_DedupesPreservingOrder(t *testing.T) {
	out := NormalizeIDs([]string{" b ", "a", "b", "", "a"})
	expected := []string{"b", "a"}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestNormalizeIDs_Empty(t *testing.T) {
	if out := NormalizeIDs(nil); len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}
