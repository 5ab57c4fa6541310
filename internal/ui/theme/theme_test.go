package theme

import (
	"strings"
	"testing"
)

func TestField(t *testing.T) {
	out := Field("band", "5.0")
	if !strings.Contains(out, "band:") || !strings.Contains(out, "5.0") {
		t.Errorf("Field() = %q", out)
	}
}
