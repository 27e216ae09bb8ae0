// Package villain resolves the ambiguous "pick something of the villain's"
// instructions into concrete values before any prompt is built, so that
// generated imagery and clue text agree on the same object. Everything here
// is deterministic.
package villain

import (
	"hash/fnv"
	"strings"
	"time"
)

// droppableItems are scanned, in order, against the villain's clothing
// description. First match wins, so the same clothing always resolves to the
// same item.
var droppableItems = []string{"jacket", "hat", "scarf", "glove", "bag", "coat", "cap", "bandana", "backpack"}

// themeItems maps theme keywords to a themed evidence item for villains whose
// clothing mentions nothing droppable. Ordered: first matching keyword wins.
var themeItems = []struct {
	keyword string
	item    string
}{
	{"deforestation", "green t-shirt with tree logo"},
	{"rainforest", "green t-shirt with tree logo"},
	{"ocean", "blue cap with wave emblem"},
	{"coral", "blue cap with wave emblem"},
	{"glacier", "white scarf with snowflake pattern"},
	{"ice", "white scarf with snowflake pattern"},
	{"volcano", "orange bandana with flame print"},
	{"desert", "sand-colored sun hat"},
	{"bird", "feather-patterned scarf"},
	{"fossil", "khaki field vest"},
	{"star", "dark blue cap with constellation print"},
	{"lantern", "paper-lantern pin on a gray jacket"},
}

// ResolveItem returns the concrete dropped-belonging item for a villain,
// derived from the clothing description, falling back to a theme lookup and
// finally a generic themed shirt. Same inputs, same output.
func ResolveItem(clothing, theme string) string {
	lower := strings.ToLower(clothing)
	for _, item := range droppableItems {
		if strings.Contains(lower, item) {
			return item
		}
	}

	themeLower := strings.ToLower(theme)
	for _, e := range themeItems {
		if strings.Contains(themeLower, e.keyword) {
			return e.item
		}
	}

	return "t-shirt with a " + firstWord(themeLower, "mystery") + " motif"
}

func firstWord(s, fallback string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}

// traitEntry is one weighted bucket of the demographic table used to
// diversify villain representation across generated games.
type traitEntry struct {
	weight int
	trait  string
}

var traitTable = []traitEntry{
	{3, "woman in her 30s of East Asian descent"},
	{3, "man in his 40s of West African descent"},
	{3, "woman in her 50s of South American descent"},
	{3, "man in his 20s of South Asian descent"},
	{2, "woman in her 40s of Middle Eastern descent"},
	{2, "man in his 60s of Northern European descent"},
	{2, "woman in her 20s of Pacific Islander descent"},
	{2, "man in his 30s of Caribbean descent"},
	{2, "nonbinary person in their 30s of Southeast Asian descent"},
	{2, "woman in her 60s of Eastern European descent"},
}

// SelectTrait picks a villain demographic descriptor from the weighted table
// using an FNV hash of the instant. The original used timestamp modulo ten,
// which skews badly; hashing keeps the pick cheap and reproducible for a
// fixed instant while distributing evenly across instants.
func SelectTrait(now time.Time) string {
	total := 0
	for _, e := range traitTable {
		total += e.weight
	}

	h := fnv.New32a()
	var buf [8]byte
	nanos := now.UnixNano()
	for i := range buf {
		buf[i] = byte(nanos >> (8 * i))
	}
	h.Write(buf[:])

	pick := int(h.Sum32()) % total
	if pick < 0 {
		pick += total
	}
	for _, e := range traitTable {
		pick -= e.weight
		if pick < 0 {
			return e.trait
		}
	}
	return traitTable[0].trait
}
