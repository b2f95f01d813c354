// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestDefined(t *testing.T) {
	for name, v := range map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
		"Binary":       Binary,
	} {
		if v == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(v) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestNotPlaceholder(t *testing.T) {
	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}

	for _, placeholder := range placeholders {
		if Version == placeholder {
			t.Errorf("Version should not be placeholder value: %s", placeholder)
		}
		if Product == placeholder {
			t.Errorf("Product should not be placeholder value: %s", placeholder)
		}
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Product) || !strings.HasSuffix(s, Version) {
		t.Errorf("String() = %q", s)
	}
}

func TestBinaryHasNoSpaces(t *testing.T) {
	if strings.ContainsAny(Binary, " \t") {
		t.Errorf("Binary %q must be a single word", Binary)
	}
}
