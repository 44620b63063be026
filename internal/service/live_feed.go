package service

import (
	"sync"

	"gov-token-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LiveFeed is the in-process publish/subscribe hub behind the live token
// display. It tracks the set of currently-called tokens per (department,
// booking date) and pushes the most recently updated one to subscribers.
//
// Delivery is latest-wins: each subscriber buffers at most one pending
// notification, so a slow display client never backs up the booking path.
type LiveFeed struct {
	log *logrus.Logger

	mu     sync.Mutex
	called map[feedKey]map[uuid.UUID]entity.Token
	subs   map[*Subscription]struct{}
}

// feedKey scopes a called-token set to one department and day
type feedKey struct {
	departmentID string
	date         string
}

// Subscription is one subscriber's notification stream. C yields the current
// called token after every relevant change; nil means no token is being
// served. Cancel is idempotent and closes C.
type Subscription struct {
	C <-chan *entity.Token

	ch           chan *entity.Token
	departmentID string // empty string subscribes across all departments
	date         string
	feed         *LiveFeed
	once         sync.Once
}

func NewLiveFeed(log *logrus.Logger) *LiveFeed {
	return &LiveFeed{
		log:    log,
		called: make(map[feedKey]map[uuid.UUID]entity.Token),
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a listener for the given department and booking date
// (YYYY-MM-DD). Pass an empty departmentID to watch every department. The
// current state is delivered immediately.
func (f *LiveFeed) Subscribe(departmentID, date string) *Subscription {
	sub := &Subscription{
		ch:           make(chan *entity.Token, 1),
		departmentID: departmentID,
		date:         date,
		feed:         f,
	}
	sub.C = sub.ch

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	sub.deliver(f.currentLocked(departmentID, date))
	f.mu.Unlock()

	return sub
}

// Publish ingests a token change. Called tokens join the live set; any other
// status removes the token from it. Every matching subscriber is then told
// the new current token.
func (f *LiveFeed) Publish(token *entity.Token) {
	if token == nil {
		return
	}
	date := token.BookingDate.Format("2006-01-02")
	key := feedKey{departmentID: token.DepartmentID.String(), date: date}

	f.mu.Lock()
	defer f.mu.Unlock()

	if token.Status == entity.TokenStatusCalled {
		set := f.called[key]
		if set == nil {
			set = make(map[uuid.UUID]entity.Token)
			f.called[key] = set
		}
		set[token.ID] = *token
	} else if set, ok := f.called[key]; ok {
		delete(set, token.ID)
		if len(set) == 0 {
			delete(f.called, key)
		}
	}

	for sub := range f.subs {
		if sub.date != date {
			continue
		}
		if sub.departmentID != "" && sub.departmentID != key.departmentID {
			continue
		}
		sub.deliver(f.currentLocked(sub.departmentID, sub.date))
	}
}

// Warm seeds the called-token sets, typically from the database at startup
// so displays recover state after a restart.
func (f *LiveFeed) Warm(tokens []entity.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, token := range tokens {
		if token.Status != entity.TokenStatusCalled {
			continue
		}
		key := feedKey{
			departmentID: token.DepartmentID.String(),
			date:         token.BookingDate.Format("2006-01-02"),
		}
		set := f.called[key]
		if set == nil {
			set = make(map[uuid.UUID]entity.Token)
			f.called[key] = set
		}
		set[token.ID] = token
	}
}

// currentLocked picks the called token with the greatest effective update
// time among the sets matching the filter. Caller must hold f.mu.
func (f *LiveFeed) currentLocked(departmentID, date string) *entity.Token {
	var best *entity.Token
	for key, set := range f.called {
		if key.date != date {
			continue
		}
		if departmentID != "" && key.departmentID != departmentID {
			continue
		}
		for _, token := range set {
			candidate := token
			if best == nil || candidate.EffectiveTime().After(best.EffectiveTime()) {
				best = &candidate
				continue
			}
			// Deterministic tie-break on equal timestamps
			if candidate.EffectiveTime().Equal(best.EffectiveTime()) && candidate.TokenNumber > best.TokenNumber {
				best = &candidate
			}
		}
	}
	return best
}

// deliver replaces any undelivered notification with the newest one. Never
// blocks: the subscriber's channel holds at most one pending value.
func (s *Subscription) deliver(current *entity.Token) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- current:
	default:
	}
}

// Cancel stops delivery and closes C. Safe to call multiple times. After
// Cancel returns no further notification is sent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
		close(s.ch)
	})
}
