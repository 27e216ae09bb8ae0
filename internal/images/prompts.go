package images

import (
	"fmt"
	"strings"

	"github.com/dev-zuma/places-sub000/internal/places"
)

// evidenceTemplates phrase how the villain-evidence element appears in a
// location image. Whatever the obscurity level does to the location, the
// evidence element must stay legible — it is the clue.
var evidenceTemplates = map[places.Evidence]string{
	places.EvidenceSecurityFootage: "Rendered as grainy security-camera footage with a timestamp overlay. The villain's %s is caught mid-frame, clearly visible despite the footage quality.",
	places.EvidenceBelongings:      "A dropped %s lies in the foreground, in sharp focus and unmistakable — the villain left it behind in a hurry.",
	places.EvidenceReflection:      "In a reflective surface (window, puddle, or polished metal), the villain's %s is clearly visible, even though the villain has already gone.",
	places.EvidenceShadow:          "A long cast shadow shows the distinctive silhouette of the villain's %s, crisp against the ground.",
}

// obscurityTemplates control how recognizable the location itself is.
var obscurityTemplates = map[places.Obscurity]string{
	places.ObscurityObscured: "The location is heavily obscured: fog, night, or an extreme close-up hides every identifying landmark.",
	places.ObscurityMedium:   "The location is partially recognizable: one landmark hinted at in the background, softened by weather or distance.",
	places.ObscurityClear:    "The location is clearly recognizable, landmarks visible in good light.",
}

// LocationPrompt builds the image prompt for one crime-scene image. The
// evidence item must already be resolved — the same string is reused in clue
// text so image and text agree.
func LocationPrompt(loc places.Location, plan places.ImagePlacement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Illustrated scene for a children's detective game. Setting: %s, %s.", loc.Name, loc.Country)
	if len(loc.Landmarks) > 0 {
		fmt.Fprintf(&b, " Nearby: %s.", strings.Join(loc.Landmarks, ", "))
	}
	b.WriteString(" ")
	b.WriteString(obscurityTemplates[plan.Obscurity])
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf(evidenceTemplates[plan.Evidence], plan.Item))
	b.WriteString(" Warm storybook style, no text, no people's faces.")
	return b.String()
}

// PortraitPrompt builds the villain portrait prompt from the persisted
// villain descriptor.
func PortraitPrompt(v places.Villain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Storybook portrait of a cartoon villain for a children's detective game: %s", v.Name)
	if v.Title != "" {
		fmt.Fprintf(&b, ", known as %s", v.Title)
	}
	b.WriteString(". ")
	var traits []string
	for _, t := range []string{v.Gender, v.Age, v.Race, v.Ethnicity} {
		if t != "" {
			traits = append(traits, t)
		}
	}
	if len(traits) > 0 {
		fmt.Fprintf(&b, "Appearance: %s. ", strings.Join(traits, ", "))
	}
	if v.DistinctiveFeature != "" {
		fmt.Fprintf(&b, "Distinctive feature: %s. ", v.DistinctiveFeature)
	}
	fmt.Fprintf(&b, "Wearing %s. ", v.Clothing)
	b.WriteString("Mischievous but friendly, bust framing, plain background, no text.")
	return b.String()
}
