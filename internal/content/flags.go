package content

// flagPalettes maps country names to their three dominant flag colors. The
// lookup is local and pure — flag colors are deterministic facts, never asked
// of the generative service.
var flagPalettes = map[string][]string{
	"Argentina":      {"light blue", "white", "yellow"},
	"Australia":      {"blue", "white", "red"},
	"Brazil":         {"green", "yellow", "blue"},
	"Canada":         {"red", "white", "red"},
	"Chile":          {"red", "white", "blue"},
	"China":          {"red", "yellow", "red"},
	"Colombia":       {"yellow", "blue", "red"},
	"Egypt":          {"red", "white", "black"},
	"France":         {"blue", "white", "red"},
	"Germany":        {"black", "red", "gold"},
	"Ghana":          {"red", "gold", "green"},
	"Greece":         {"blue", "white", "blue"},
	"Iceland":        {"blue", "white", "red"},
	"India":          {"saffron", "white", "green"},
	"Indonesia":      {"red", "white", "red"},
	"Italy":          {"green", "white", "red"},
	"Japan":          {"white", "red", "white"},
	"Kenya":          {"black", "red", "green"},
	"Mexico":         {"green", "white", "red"},
	"Morocco":        {"red", "green", "red"},
	"Netherlands":    {"red", "white", "blue"},
	"New Zealand":    {"blue", "white", "red"},
	"Nigeria":        {"green", "white", "green"},
	"Norway":         {"red", "white", "blue"},
	"Peru":           {"red", "white", "red"},
	"Portugal":       {"green", "red", "yellow"},
	"South Africa":   {"green", "gold", "black"},
	"South Korea":    {"white", "red", "blue"},
	"Spain":          {"red", "yellow", "red"},
	"Sweden":         {"blue", "yellow", "blue"},
	"Thailand":       {"red", "white", "blue"},
	"Turkey":         {"red", "white", "red"},
	"United Kingdom": {"blue", "white", "red"},
	"United States":  {"red", "white", "blue"},
	"Vietnam":        {"red", "yellow", "red"},
}

// genericPalette is the fallback for countries missing from the table.
var genericPalette = []string{"red", "white", "blue"}

// FlagColors returns the three-color palette for a country. Unknown countries
// get the generic palette rather than an error.
func FlagColors(country string) []string {
	if p, ok := flagPalettes[country]; ok {
		out := make([]string, len(p))
		copy(out, p)
		return out
	}
	out := make([]string, len(genericPalette))
	copy(out, genericPalette)
	return out
}
