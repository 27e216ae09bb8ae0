// Package images generates villain portraits and obscurity-aware location
// images and hands the bytes to object storage. Failures here never fail a
// generation run — a game without images is still playable.
package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev-zuma/places-sub000/internal/genai"
	"github.com/dev-zuma/places-sub000/internal/places"
)

// ErrImagePipeline wraps any failure generating or storing an image.
var ErrImagePipeline = errors.New("image pipeline failed")

// Generator is the image-generation dependency, satisfied by
// *genai.ImageClient.
type Generator interface {
	Generate(ctx context.Context, prompt, size, quality string) (genai.ImageResult, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Storage stores image bytes and returns a serving URL. Store must be safe
// to call again for the same slot (overwrite semantics).
type Storage interface {
	Store(ctx context.Context, data []byte, gameID, slot string) (string, error)
}

// Pipeline generates and stores the images for one game.
type Pipeline struct {
	gen   Generator
	store Storage
}

// NewPipeline creates a Pipeline.
func NewPipeline(gen Generator, store Storage) *Pipeline {
	return &Pipeline{gen: gen, store: store}
}

const (
	portraitSize = "1024x1024"
	sceneSize    = "1536x1024"
	quality      = "standard"
)

// SceneSlot names the storage slot for the image of the location at the
// given position.
func SceneSlot(position int) string {
	return fmt.Sprintf("location-%d", position)
}

// PortraitSlot is the storage slot for the villain portrait.
const PortraitSlot = "villain-portrait"

func (p *Pipeline) generate(ctx context.Context, prompt, size, gameID, slot string) (string, error) {
	res, err := p.gen.Generate(ctx, prompt, size, quality)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrImagePipeline, slot, err)
	}

	data := res.Data
	if data == nil {
		data, err = p.gen.Fetch(ctx, res.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrImagePipeline, slot, err)
		}
	}

	url, err := p.store.Store(ctx, data, gameID, slot)
	if err != nil {
		return "", fmt.Errorf("%w: storing %s: %v", ErrImagePipeline, slot, err)
	}
	return url, nil
}

// VillainPortrait generates and stores the villain portrait, returning its
// serving URL.
func (p *Pipeline) VillainPortrait(ctx context.Context, gameID string, v places.Villain) (string, error) {
	return p.generate(ctx, PortraitPrompt(v), portraitSize, gameID, PortraitSlot)
}

// LocationImage generates and stores one crime-scene image, returning its
// serving URL.
func (p *Pipeline) LocationImage(ctx context.Context, gameID string, loc places.Location, plan places.ImagePlacement) (string, error) {
	return p.generate(ctx, LocationPrompt(loc, plan), sceneSize, gameID, SceneSlot(loc.Position))
}
