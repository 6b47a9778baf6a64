package slices

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNamesCoverEveryBuilder(t *testing.T) {
	got := Names()
	if len(got) != 10 {
		t.Fatalf("expected 10 slices, got %d", len(got))
	}
	for _, name := range got {
		if _, ok := Initial(name); !ok {
			t.Fatalf("slice %q has no builder", name)
		}
	}
	if got[0] != Phase || got[len(got)-1] != Settings {
		t.Fatalf("unexpected ordering: %v", got)
	}
}

func TestInitialUnknownSlice(t *testing.T) {
	if record, ok := Initial("inventory"); ok || record != nil {
		t.Fatalf("expected no builder for unknown slice, got %v", record)
	}
}

func TestInitialReturnsIndependentCopies(t *testing.T) {
	first, _ := Initial(Skills)
	first["xp"] = float64(500)
	first["ranks"].(map[string]any)["rapid_fire"] = float64(3)

	second, _ := Initial(Skills)
	if got := second["xp"]; got != float64(0) {
		t.Fatalf("builder shared scalar state: %v", got)
	}
	if got := len(second["ranks"].(map[string]any)); got != 0 {
		t.Fatalf("builder shared nested map: %d entries", got)
	}
}

func TestInitialRunShape(t *testing.T) {
	got, ok := Initial(Run)
	if !ok {
		t.Fatalf("missing run builder")
	}
	want := map[string]any{
		"active":    false,
		"runId":     "",
		"wave":      float64(0),
		"score":     float64(0),
		"kills":     float64(0),
		"gold":      float64(0),
		"startedAt": float64(0),
		"duration":  float64(0),
		"seed":      "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("run slice mismatch (-want +got):\n%s", diff)
	}
}

func TestNumbersAreFloat64(t *testing.T) {
	for _, name := range Names() {
		record, _ := Initial(name)
		for key, value := range record {
			switch value.(type) {
			case int, int32, int64, uint, uint32, uint64, float32:
				t.Fatalf("slice %s key %s holds non-float64 number %T", name, key, value)
			}
		}
	}
}
