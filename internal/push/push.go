// Package push delivers browser push messages over the Web Push protocol.
// Delivery is best-effort: transient failures are logged and forgotten, only
// an explicit "gone" response removes the subscription it was sent to.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/Skotchmaster/hrms_backend/internal/logging"
	"github.com/Skotchmaster/hrms_backend/internal/models"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
)

const defaultSendTimeout = 30 * time.Second

// Payload is the message shape the service worker on the client expects.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Badge string         `json:"badge,omitempty"`
	URL   string         `json:"url,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type Service struct {
	Subs         *repo.SubscriptionRepo
	VAPIDPublic  string
	VAPIDPrivate string
	Subscriber   string // contact mailto/URL required by the push protocol
	Timeout      time.Duration

	// Send is swappable in tests, production uses the webpush transport.
	Send func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func New(subs *repo.SubscriptionRepo, vapidPublic, vapidPrivate, subscriber string) *Service {
	return &Service{
		Subs:         subs,
		VAPIDPublic:  vapidPublic,
		VAPIDPrivate: vapidPrivate,
		Subscriber:   subscriber,
		Timeout:      defaultSendTimeout,
		Send:         webpush.SendNotificationWithContext,
	}
}

// DeliverToUser sends the payload to every endpoint the user registered.
// Each send is independent: one endpoint failing never blocks the others.
// Endpoints the push service reports gone (410, or 404 on some providers)
// are pruned, everything else is logged and left alone.
func (s *Service) DeliverToUser(ctx context.Context, user *models.User, payload Payload) {
	l := logging.FromContext(ctx).With("svc", "push", "user_id", user.ID)

	message, err := json.Marshal(payload)
	if err != nil {
		l.Error("payload marshal failed", "error", err)
		return
	}

	subs := user.Subscriptions
	if subs == nil {
		loaded, err := s.Subs.ForUser(ctx, user.ID)
		if err != nil {
			l.Error("subscription load failed", "error", err)
			return
		}
		subs = loaded
	}

	for _, sub := range subs {
		s.sendOne(ctx, l, sub, message)
	}
}

func (s *Service) sendOne(ctx context.Context, l *slog.Logger, sub models.PushSubscription, message []byte) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.Send(sendCtx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      s.Subscriber,
		VAPIDPublicKey:  s.VAPIDPublic,
		VAPIDPrivateKey: s.VAPIDPrivate,
		TTL:             60,
	})
	if err != nil {
		// Timeouts and transport errors are transient, never a prune.
		l.Warn("push send failed", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		if err := s.Subs.RemoveByEndpoint(ctx, sub.Endpoint); err != nil {
			l.Error("prune failed", "endpoint", sub.Endpoint, "error", err)
			return
		}
		l.Warn("pruned dead subscription", "endpoint", sub.Endpoint, "status", resp.StatusCode)
	case resp.StatusCode >= 400:
		l.Warn("push rejected", "endpoint", sub.Endpoint, "status", resp.StatusCode)
	}
}

// DeliverToMany fans DeliverToUser out across the audience concurrently and
// returns once every attempt settled. It never fails as a whole.
func (s *Service) DeliverToMany(ctx context.Context, users []models.User, payload Payload) {
	var wg sync.WaitGroup
	for i := range users {
		u := &users[i]
		if len(u.Subscriptions) == 0 {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.DeliverToUser(ctx, u, payload)
		}()
	}
	wg.Wait()
}
