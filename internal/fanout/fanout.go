// Package fanout coordinates the side channels that fire after a domain
// write commits: the durable per-user notification record, the realtime
// bus, web push, the kafka event export and the search index. Every channel
// runs isolated, a failure or panic in one is logged and never reaches the
// caller or the other channels. The triggering write has already committed
// by the time NotifyUser/NotifyAll run, nothing here can roll it back.
package fanout

import (
	"context"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/Skotchmaster/hrms_backend/internal/bus"
	"github.com/Skotchmaster/hrms_backend/internal/logging"
	"github.com/Skotchmaster/hrms_backend/internal/mykafka"
	"github.com/Skotchmaster/hrms_backend/internal/push"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
	"github.com/Skotchmaster/hrms_backend/internal/search"
)

// Event carries what the collaborator wants announced. Type is an open
// string tag, the fanout layer does not validate it against any enum.
type Event struct {
	Type    string
	Title   string
	Message string
	Data    map[string]any
}

type Service struct {
	Users         *repo.UserRepo
	Notifications *repo.NotificationRepo
	Bus           *bus.Bus
	Push          *push.Service

	// Optional channels, nil disables them.
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

// runChannel executes one fanout channel, trapping errors and panics so the
// remaining channels always run.
func runChannel(ctx context.Context, name string, fn func() error) {
	l := logging.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			l.Error("fanout channel panicked", "channel", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if err := fn(); err != nil {
		l.Error("fanout channel failed", "channel", name, "error", err)
	}
}

// NotifyUser fans a targeted event out to one recipient: a stored record, a
// room event on the bus, push to every registered endpoint, plus the kafka
// and search exports when configured. Returns after every channel settled.
func (s *Service) NotifyUser(ctx context.Context, userID uint, ev Event) {
	payload := map[string]any{
		"type":    ev.Type,
		"title":   ev.Title,
		"message": ev.Message,
		"data":    ev.Data,
	}
	room := strconv.FormatUint(uint64(userID), 10)

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runChannel(ctx, name, fn)
		}()
	}

	run("store", func() error {
		n, err := s.Notifications.CreateForUser(ctx, userID, ev.Type, ev.Title, ev.Message, ev.Data)
		if err != nil {
			return err
		}
		if s.Indexer != nil {
			runChannel(ctx, "index", func() error { return s.Indexer.IndexNotification(ctx, n) })
		}
		return nil
	})
	run("bus", func() error {
		s.Bus.BroadcastToRoom(room, ev.Type, payload)
		return nil
	})
	run("push", func() error {
		user, err := s.Users.ByID(ctx, userID)
		if err != nil {
			return err
		}
		s.Push.DeliverToUser(ctx, user, push.Payload{
			Title: ev.Title,
			Body:  ev.Message,
			Data:  ev.Data,
		})
		return nil
	})
	if s.Producer != nil {
		run("kafka", func() error {
			return s.Producer.PublishEvent(ctx, room, payload)
		})
	}
	wg.Wait()
}

// NotifyAll fans a broadcast event out to every Active account. The
// audience is snapshotted once, accounts flipping status mid-fanout may or
// may not be included.
func (s *Service) NotifyAll(ctx context.Context, ev Event) {
	payload := map[string]any{
		"type":    ev.Type,
		"title":   ev.Title,
		"message": ev.Message,
		"data":    ev.Data,
	}

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runChannel(ctx, name, fn)
		}()
	}

	run("store", func() error {
		created, err := s.Notifications.CreateForAllActive(ctx, ev.Type, ev.Title, ev.Message, ev.Data)
		if err != nil {
			return err
		}
		logging.FromContext(ctx).Info("broadcast stored", "type", ev.Type, "recipients", len(created))
		if s.Indexer != nil {
			runChannel(ctx, "index", func() error {
				for i := range created {
					if err := s.Indexer.IndexNotification(ctx, &created[i]); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return nil
	})
	run("bus", func() error {
		s.Bus.BroadcastGlobal(ev.Type, payload)
		return nil
	})
	run("push", func() error {
		users, err := s.Users.ActiveUsers(ctx)
		if err != nil {
			return err
		}
		s.Push.DeliverToMany(ctx, users, push.Payload{
			Title: ev.Title,
			Body:  ev.Message,
			Data:  ev.Data,
		})
		return nil
	})
	if s.Producer != nil {
		run("kafka", func() error {
			return s.Producer.PublishEvent(ctx, ev.Type, payload)
		})
	}
	wg.Wait()
}
