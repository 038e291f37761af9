// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fanout

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/tapvote/models"
)

// Audience partitions subscribers: the public kiosk display and the
// administrative console see different events.
type Audience string

const (
	AudienceKiosk Audience = "kiosk"
	AudienceAdmin Audience = "admin"
)

// Event is one pushed notification. Delivery is best-effort and
// at-most-once; clients re-fetch authoritative tallies on reconnect.
type Event struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// Payload types, one per event kind.

type RawScanPayload struct {
	UID             string `json:"uid"`
	AlreadyEnrolled bool   `json:"already_enrolled"`
}

type ScanRejectedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type ScanAuthorizedPayload struct {
	VotePath string `json:"vote_path"`
}

type VoteCommittedPayload struct {
	SessionID int64                `json:"session_id"`
	Total     int                  `json:"total"`
	Counts    []models.OptionCount `json:"counts"`
}

// subscriberBuffer is per-subscriber; a subscriber that falls this far
// behind starts losing events rather than blocking publishers.
const subscriberBuffer = 16

// Subscriber receives events for one audience on C until Close.
type Subscriber struct {
	C chan Event

	hub      *Hub
	audience Audience
	once     sync.Once
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.audience], s)
		close(s.C)
	})
}

// Hub fans events out to connected kiosk and admin observers. It is
// the only channel between the background scan loop and the request
// handlers; neither ever calls into the other directly.
type Hub struct {
	mu   sync.RWMutex
	subs map[Audience]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: map[Audience]map[*Subscriber]struct{}{
			AudienceKiosk: {},
			AudienceAdmin: {},
		},
	}
}

// Subscribe registers a new observer for one audience.
func (h *Hub) Subscribe(audience Audience) *Subscriber {
	sub := &Subscriber{
		C:        make(chan Event, subscriberBuffer),
		hub:      h,
		audience: audience,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[audience][sub] = struct{}{}
	return sub
}

// Publish delivers an event to every current subscriber of the given
// audiences. Sends never block: a full subscriber buffer drops the
// event for that subscriber only. Each subscriber sees the events it
// does receive in publish order.
func (h *Hub) Publish(kind string, payload any, audiences ...Audience) {
	event := Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		At:      time.Now(),
		Payload: payload,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, audience := range audiences {
		for sub := range h.subs[audience] {
			select {
			case sub.C <- event:
			default:
				slog.Warn("dropping event for slow subscriber",
					"kind", kind, "audience", audience)
			}
		}
	}
}

// SubscriberCount reports connected observers for an audience.
func (h *Hub) SubscriberCount(audience Audience) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[audience])
}
