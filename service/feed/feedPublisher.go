package feedsvc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	feedrepo "github.com/vijender883/bookyard/repository/feed"
	"github.com/vijender883/bookyard/util/metrics"
)

// Publisher appends activity entries after domain transactions commit.
// It is strictly best-effort: publishing never blocks the caller and a
// failed insert is logged and dropped, never surfaced.
type Publisher struct {
	r   feedrepo.Repo
	log *slog.Logger

	ch   chan model.FeedEntry
	once sync.Once
	done chan struct{}
}

func NewPublisher(r feedrepo.Repo, log *slog.Logger) *Publisher {
	p := &Publisher{
		r:    r,
		log:  log,
		ch:   make(chan model.FeedEntry, 256),
		done: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	for e := range p.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.r.Insert(ctx, &e); err != nil {
			p.log.Warn("feed insert failed", "action", e.ActionType, "actor", e.ActorID, "err", err)
		}
		cancel()
	}
	close(p.done)
}

// Close drains the buffer and stops the worker.
func (p *Publisher) Close() {
	p.once.Do(func() { close(p.ch) })
	<-p.done
}

func (p *Publisher) publish(e model.FeedEntry) {
	select {
	case p.ch <- e:
	default:
		metrics.FeedDropped.Inc()
		p.log.Warn("feed buffer full, dropping event", "action", e.ActionType, "actor", e.ActorID)
	}
}

func (p *Publisher) BookListed(actorID uuid.UUID, bookID int64, title string, intent model.Intent) {
	p.publish(model.FeedEntry{
		ActorID:    actorID,
		ActionType: model.FeedBookListed,
		Content:    fmt.Sprintf("listed %q for %s", title, intent),
		Metadata:   map[string]any{"book_id": bookID, "intent": string(intent)},
		IsPublic:   true,
	})
}

func (p *Publisher) ReservationCreated(actorID uuid.UUID, reservationID, bookID int64, bookTitle string) {
	p.publish(model.FeedEntry{
		ActorID:    actorID,
		ActionType: model.FeedReservationCreated,
		Content:    fmt.Sprintf("reserved %q", bookTitle),
		Metadata:   map[string]any{"reservation_id": reservationID, "book_id": bookID},
		IsPublic:   true,
	})
}

// List is the read side used by the feed endpoint.
func (p *Publisher) List(ctx context.Context, viewer *uuid.UUID, limit int) ([]model.FeedEntry, error) {
	return p.r.List(ctx, viewer, limit)
}
