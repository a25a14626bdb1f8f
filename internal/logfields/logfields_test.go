package logfields

import (
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Source", KeySource, "docs/", Source("docs/")},
		{"Output", KeyOutput, "out/", Output("out/")},
		{"File", KeyFile, "intro.xml", File("intro.xml")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Tag", KeyTag, "section", Tag("section")},
		{"Toplevel", KeyToplevel, "book", Toplevel("book")},
		{"Engine", KeyEngine, "xsltproc", Engine("xsltproc")},
		{"Stylesheet", KeyStylesheet, "a.xsl", Stylesheet("a.xsl")},
		{"Title", KeyTitle, "Release Notes", Title("Release Notes")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := Includes(3); v.Key != KeyIncludes || v.Value.Int64() != 3 {
		t.Fatalf("Includes mismatch: %v", v)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Since(time.Now().Add(-time.Second)); v.Value.Float64() < 1000 {
		t.Fatalf("Since reported %v ms for a one second interval", v.Value.Float64())
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
