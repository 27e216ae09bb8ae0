package content

import "strings"

// fallbackPool is the static theme pool used when the diversify call fails
// or returns nothing usable.
var fallbackPool = []string{
	"stolen rainforest seed bank",
	"missing lighthouse lenses",
	"vanished carnival masks",
	"smuggled dinosaur fossils",
	"sabotaged wind farms",
	"stolen coral reef samples",
	"missing ancient star maps",
	"pilfered volcano sensors",
	"stolen chocolate recipes",
	"missing migratory bird trackers",
	"swiped subway mosaic tiles",
	"stolen glacier ice cores",
	"missing desert observatory mirrors",
	"smuggled silk road spices",
	"stolen festival lanterns",
}

// FallbackThemes returns up to n themes from the static pool, skipping any
// in avoid.
func FallbackThemes(n int, avoid []string) []string {
	skip := make(map[string]bool, len(avoid))
	for _, t := range avoid {
		skip[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var out []string
	for _, t := range fallbackPool {
		if skip[strings.ToLower(t)] {
			continue
		}
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}
