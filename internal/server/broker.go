package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dev-zuma/places-sub000/internal/places"
)

// ProgressEvent is the payload published to generation-progress subscribers.
type ProgressEvent struct {
	GameID         string `json:"gameId"`
	Status         string `json:"status"`
	CurrentStep    string `json:"currentStep"`
	CompletedSteps int    `json:"completedSteps"`
	TotalSteps     int    `json:"totalSteps"`
	Error          string `json:"error,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by game ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded progress events for
// the given game.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given game.
func (b *Broker) Publish(gameID string, event ProgressEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[gameID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// progressStore decorates a Store so every generation-record update is also
// published to SSE subscribers. The generator stays unaware of transport.
type progressStore struct {
	Store
	broker *Broker
}

// NewProgressStore wraps store so record updates fan out through broker.
func NewProgressStore(store Store, broker *Broker) Store {
	return &progressStore{Store: store, broker: broker}
}

func (s *progressStore) UpsertGenerationRecord(ctx context.Context, rec places.GenerationRecord) error {
	if err := s.Store.UpsertGenerationRecord(ctx, rec); err != nil {
		return err
	}
	s.broker.Publish(rec.GameID, ProgressEvent{
		GameID:         rec.GameID,
		Status:         string(rec.Status),
		CurrentStep:    rec.CurrentStep,
		CompletedSteps: rec.CompletedSteps,
		TotalSteps:     rec.TotalSteps,
		Error:          rec.Error,
	})
	return nil
}
