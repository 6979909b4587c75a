// Package state is the single owner of the content mirror. It keeps the
// latest snapshot of every remote collection, forwards mutations to the
// remote store, and tracks which console sessions are signed in.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/muttaqilab/studio/internal/auth"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
	"github.com/muttaqilab/studio/internal/store"
)

var (
	ErrStoreUnconfigured = errors.New("remote store not configured")
	ErrAuthUnconfigured  = errors.New("auth provider not configured")
	ErrAccessDenied      = errors.New("access denied")
	ErrRemoteWrite       = errors.New("remote write failed")
	ErrClosed            = errors.New("state store closed")
	// ErrStoreUnavailable means a remote store is configured but its
	// subscriptions could not be opened. It matches ErrStoreUnconfigured.
	ErrStoreUnavailable = fmt.Errorf("%w: subscriptions failed to start", ErrStoreUnconfigured)
)

type Options struct {
	// Remote is the system of record. Nil runs the store on local defaults
	// and rejects every mutation.
	Remote store.Remote
	// Auth is the console identity provider. Nil rejects every login.
	Auth   auth.Provider
	Site   *content.Site
	Logger *slog.Logger
	Now    func() time.Time
}

// Status describes how the mirror relates to the remote store.
type Status struct {
	RemoteConfigured bool
	AuthConfigured   bool
	// RemoteDown is set when Start could not open the subscriptions. The
	// remote stays attached for health checks but takes no writes.
	RemoteDown bool
	// Synced is set per collection once the first remote payload arrived.
	Synced map[string]bool
	// RemoteEmpty is set when the last payload of a collection was empty
	// and local defaults are still shown in its place.
	RemoteEmpty map[string]bool
	// Errors holds the reason a subscription stopped on its own.
	Errors map[string]string
}

// View is a consistent copy of the mirrored content.
type View struct {
	Projects []content.Project
	Briefs   []content.Brief
	Reviews  []content.Review
	Socials  content.SocialLinks
	Version  uint64
}

type Store struct {
	remote store.Remote
	auth   auth.Provider
	site   *content.Site
	log    *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	projects    []content.Project
	briefs      []content.Brief
	reviews     []content.Review
	socials     content.SocialLinks
	synced      map[string]bool
	remoteEmpty map[string]bool
	subErrors   map[string]string
	remoteDown  bool
	authDown    bool
	sessions    map[string]*session
	version     uint64
	changed     chan struct{}

	started   bool
	cancels   []func()
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

func New(opt Options) *Store {
	if opt.Site == nil {
		opt.Site = content.MustDefaults(time.Now())
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}

	s := &Store{
		remote:      opt.Remote,
		auth:        opt.Auth,
		site:        opt.Site,
		log:         opt.Logger.With("component", "state"),
		now:         opt.Now,
		synced:      make(map[string]bool),
		remoteEmpty: make(map[string]bool),
		subErrors:   make(map[string]string),
		sessions:    make(map[string]*session),
		changed:     make(chan struct{}),
		done:        make(chan struct{}),
	}

	for _, p := range opt.Site.Projects {
		s.projects = append(s.projects, p.Clone())
	}
	s.reviews = append(s.reviews, opt.Site.Reviews...)
	s.socials = opt.Site.Socials
	return s
}

// Start opens one subscription per collection, one for the settings
// document and one auth watch. Without a remote store or provider the
// corresponding subscriptions are skipped.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("state store already started")
	}
	s.started = true
	s.mu.Unlock()

	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	if s.remote != nil {
		queries := []struct {
			q     store.Query
			apply func(store.Snapshot)
		}{
			{store.Query{Collection: content.CollectionProjects, OrderBy: "dateCreated", Desc: true}, s.applyProjects},
			{store.Query{Collection: content.CollectionBriefs, OrderBy: "dateSubmitted", Desc: true}, s.applyBriefs},
			{store.Query{Collection: content.CollectionReviews}, s.applyReviews},
			{store.Query{Collection: content.CollectionSettings, Doc: content.SettingsSocialsDoc}, s.applySocials},
		}
		for _, e := range queries {
			sub, err := s.remote.Subscribe(ctx, e.q)
			if err != nil {
				err = fmt.Errorf("subscribe %s: %w", e.q.Collection, err)
				s.fail(e.q.Collection, err)
				return err
			}
			consume(s, e.q.Collection, sub, e.apply)
		}
	} else {
		s.log.Warn("remote store not configured, serving local defaults")
	}

	if s.auth != nil {
		w, err := s.auth.Watch(ctx)
		if err != nil {
			err = fmt.Errorf("watch auth: %w", err)
			s.fail("auth", err)
			return err
		}
		consume(s, "auth", w, s.applyAuth)
	}

	return nil
}

// fail tears down whatever Start already opened. Neither the remote nor
// the auth provider is usable afterwards.
func (s *Store) fail(name string, err error) {
	s.log.Error("state store start failed", "feed", name, "error", err)
	s.cancelAll()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subErrors[name] = err.Error()
	s.remoteDown = s.remote != nil
	s.authDown = s.auth != nil
	s.bumpLocked()
}

// writer returns the remote store, or why mutations cannot reach it.
func (s *Store) writer() (store.Remote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.remote == nil:
		return nil, ErrStoreUnconfigured
	case s.remoteDown:
		return nil, ErrStoreUnavailable
	}
	return s.remote, nil
}

// consume drains f on its own goroutine until the feed closes.
func consume[T any](s *Store, name string, f *feed.Feed[T], apply func(T)) {
	s.mu.Lock()
	s.cancels = append(s.cancels, f.Cancel)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for v := range f.C {
			apply(v)
		}
		if err := f.Err(); err != nil {
			s.log.Error("subscription stopped", "feed", name, "error", err)
			s.mu.Lock()
			s.subErrors[name] = err.Error()
			s.bumpLocked()
			s.mu.Unlock()
		}
	}()
}

// Close cancels every subscription and waits for their consumers.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancelAll()
		s.wg.Wait()
	})
}

func (s *Store) cancelAll() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

func (s *Store) applyProjects(snap store.Snapshot) {
	projects, err := store.Decode(snap, func(p *content.Project, id string) { p.ID = id })
	if err != nil {
		s.log.Error("decode projects", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[content.CollectionProjects] = true
	s.remoteEmpty[content.CollectionProjects] = len(projects) == 0
	if len(projects) > 0 {
		s.projects = projects
	}
	s.bumpLocked()
}

func (s *Store) applyBriefs(snap store.Snapshot) {
	briefs, err := store.Decode(snap, func(b *content.Brief, id string) { b.ID = id })
	if err != nil {
		s.log.Error("decode briefs", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[content.CollectionBriefs] = true
	s.briefs = briefs
	s.bumpLocked()
}

func (s *Store) applyReviews(snap store.Snapshot) {
	reviews, err := store.Decode(snap, func(r *content.Review, id string) { r.ID = id })
	if err != nil {
		s.log.Error("decode reviews", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[content.CollectionReviews] = true
	s.remoteEmpty[content.CollectionReviews] = len(reviews) == 0
	if len(reviews) > 0 {
		s.reviews = reviews
	}
	s.bumpLocked()
}

func (s *Store) applySocials(snap store.Snapshot) {
	var links content.SocialLinks
	if len(snap) > 0 {
		if err := snap[0].DataTo(&links); err != nil {
			s.log.Error("decode socials", "error", err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[content.CollectionSettings] = true
	s.remoteEmpty[content.CollectionSettings] = len(snap) == 0
	if len(snap) > 0 {
		s.socials = links
	}
	s.bumpLocked()
}

// bumpLocked wakes everyone waiting on Changed. s.mu must be held.
func (s *Store) bumpLocked() {
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

// Changed returns a channel that is closed on the next content change.
func (s *Store) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Projects: make([]content.Project, 0, len(s.projects)),
		Briefs:   make([]content.Brief, 0, len(s.briefs)),
		Reviews:  append([]content.Review(nil), s.reviews...),
		Socials:  s.socials,
		Version:  s.version,
	}
	for _, p := range s.projects {
		v.Projects = append(v.Projects, p.Clone())
	}
	for _, b := range s.briefs {
		v.Briefs = append(v.Briefs, b.Clone())
	}
	return v
}

func (s *Store) Projects() []content.Project { return s.View().Projects }
func (s *Store) Briefs() []content.Brief     { return s.View().Briefs }
func (s *Store) Reviews() []content.Review   { return s.View().Reviews }

func (s *Store) Socials() content.SocialLinks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.socials
}

// Site returns the static page copy. It is never modified.
func (s *Store) Site() *content.Site { return s.site }

// Degraded reports whether pages should show the offline banner.
func (st Status) Degraded() bool { return !st.RemoteConfigured || st.RemoteDown }

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		RemoteConfigured: s.remote != nil,
		AuthConfigured:   s.auth != nil,
		RemoteDown:       s.remoteDown,
		Synced:           maps.Clone(s.synced),
		RemoteEmpty:      maps.Clone(s.remoteEmpty),
		Errors:           maps.Clone(s.subErrors),
	}
}
