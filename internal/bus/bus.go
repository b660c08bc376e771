// Package bus is the in-process publish/subscribe fabric behind the
// realtime notification channel. Connected clients subscribe to a room keyed
// by their user id, broadcasts are best-effort and at-most-once: a
// subscriber whose buffer is full simply misses the event and reconciles
// over REST later.
package bus

import (
	"sync"
)

type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

type Subscriber struct {
	room string
	ch   chan Event

	closeOnce sync.Once
	bus       *Bus
}

// C is the subscriber's event stream.
func (s *Subscriber) C() <-chan Event { return s.ch }

// Close detaches the subscriber and closes its stream.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
}

func (s *Subscriber) Room() string { return s.room }

// Bus is created once and handed to whatever needs to publish, it is never
// package-global state.
type Bus struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func New() *Bus {
	return &Bus{rooms: make(map[string]map[*Subscriber]struct{})}
}

const defaultBuffer = 16

// Subscribe joins a room. Buffer <= 0 picks a sane default.
func (b *Bus) Subscribe(room string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	s := &Subscriber{room: room, ch: make(chan Event, buffer), bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	members, ok := b.rooms[room]
	if !ok {
		members = make(map[*Subscriber]struct{})
		b.rooms[room] = members
	}
	members[s] = struct{}{}
	return s
}

func (b *Bus) remove(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if members, ok := b.rooms[s.room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(b.rooms, s.room)
		}
	}
}

// BroadcastToRoom delivers an event to every subscriber currently in the
// room. Fire and forget: no retry, no ack, slow subscribers drop the event.
// Events published from a single goroutine arrive in publish order.
func (b *Bus) BroadcastToRoom(room, eventName string, payload any) {
	ev := Event{Name: eventName, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.rooms[room] {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// BroadcastGlobal delivers an event to every connected subscriber
// regardless of room.
func (b *Bus) BroadcastGlobal(eventName string, payload any) {
	ev := Event{Name: eventName, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, members := range b.rooms {
		for s := range members {
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// RoomSize reports the number of subscribers currently in a room.
func (b *Bus) RoomSize(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[room])
}
