package content

import (
	"reflect"
	"testing"
)

func TestFlagColorsIdempotent(t *testing.T) {
	first := FlagColors("Japan")
	second := FlagColors("Japan")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("palettes differ: %v vs %v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("palette length = %d, want 3", len(first))
	}
}

func TestFlagColorsUnknownCountry(t *testing.T) {
	got := FlagColors("Atlantis")
	if !reflect.DeepEqual(got, []string{"red", "white", "blue"}) {
		t.Errorf("unknown country palette = %v, want generic", got)
	}
}

func TestFlagColorsCopyIsolated(t *testing.T) {
	p := FlagColors("Peru")
	p[0] = "purple"
	if FlagColors("Peru")[0] == "purple" {
		t.Error("caller mutation leaked into the table")
	}
}
