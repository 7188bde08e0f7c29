package rules

import (
	"context"
	"log"
	"sync"
	"time"
)

// Persistence is the remote collaborator that durably stores rules. Any
// error is treated as "remote change not confirmed"; the store rolls the
// optimistic local change back and reports it through the Outcome.
type Persistence interface {
	List(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, r Rule) (Rule, error)
	Update(ctx context.Context, r Rule) (Rule, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (Rule, error)
}

// Auditor receives rule lifecycle events for background recording.
// Implementations must not block.
type Auditor interface {
	RecordRuleEvent(ruleID, event string)
}

// Status is the progress of one optimistic store mutation.
type Status int

const (
	// StatusApplied: the local change is in place, remote confirmation
	// pending. The local shape is authoritative for the UI.
	StatusApplied Status = iota
	// StatusConfirmed: the remote collaborator accepted the change.
	StatusConfirmed
	// StatusReverted: the remote collaborator failed; the local change
	// has been rolled back.
	StatusReverted
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusConfirmed:
		return "confirmed"
	case StatusReverted:
		return "reverted"
	}
	return "unknown"
}

// Outcome reports how one store mutation progressed. It starts as
// StatusApplied and resolves exactly once to confirmed or reverted.
type Outcome struct {
	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

func newOutcome() *Outcome {
	return &Outcome{status: StatusApplied, done: make(chan struct{})}
}

func (o *Outcome) resolve(s Status, err error) {
	o.mu.Lock()
	o.status = s
	o.err = err
	o.mu.Unlock()
	close(o.done)
}

// Status returns the current progress.
func (o *Outcome) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Err returns the remote failure after a revert, nil otherwise.
func (o *Outcome) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Done is closed once the remote side resolved.
func (o *Outcome) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the mutation is confirmed or reverted, or the context
// expires.
func (o *Outcome) Wait(ctx context.Context) (Status, error) {
	select {
	case <-o.done:
		return o.Status(), o.Err()
	case <-ctx.Done():
		return o.Status(), ctx.Err()
	}
}

const remoteTimeout = 10 * time.Second

// Store owns the canonical rule collection for the session. Mutations
// apply locally first and settle against the remote collaborator in the
// background; the returned Outcome tells callers which way it went.
// There is exactly one logical writer at a time, but reads may come from
// anywhere, so access is serialized internally.
type Store struct {
	mu     sync.RWMutex
	rules  []Rule
	remote Persistence
	audit  Auditor
}

// NewStore creates a store backed by the given remote persistence.
// The auditor may be nil.
func NewStore(remote Persistence, audit Auditor) *Store {
	return &Store{remote: remote, audit: audit}
}

// Load replaces the local collection with the remote one. Called at
// startup and by the periodic reconcile job; the remote copy wins.
func (s *Store) Load(ctx context.Context) error {
	listed, err := s.remote.List(ctx)
	if err != nil {
		return &RemotePersistenceError{Op: "list", Err: err}
	}
	s.mu.Lock()
	s.rules = listed
	s.mu.Unlock()
	return nil
}

// Rules returns a copy of the collection in insertion order.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Get returns the rule with the given id.
func (s *Store) Get(id string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.rules[i], true
	}
	return Rule{}, false
}

// Len returns the number of rules in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Create appends the rule locally and requests creation from the remote
// collaborator. If the remote returns a canonical copy it replaces the
// local one on confirmation; on failure the rule is removed again.
func (s *Store) Create(r Rule) *Outcome {
	s.mu.Lock()
	s.rules = append(s.rules, r)
	s.mu.Unlock()

	o := newOutcome()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		created, err := s.remote.Create(ctx, r)
		if err != nil {
			s.mu.Lock()
			if i := s.indexOf(r.ID); i >= 0 {
				s.rules = append(s.rules[:i], s.rules[i+1:]...)
			}
			s.mu.Unlock()
			o.resolve(StatusReverted, &RemotePersistenceError{Op: "create", Err: err})
			return
		}
		s.mu.Lock()
		if i := s.indexOf(r.ID); i >= 0 {
			s.rules[i] = created
		}
		s.mu.Unlock()
		s.recordEvent(r.ID, "created")
		o.resolve(StatusConfirmed, nil)
	}()
	return o
}

// Update replaces the matching rule locally and pushes the change to the
// remote collaborator. A missing id is silently accepted locally (no
// insert); the remote is still asked, and a failure restores whatever was
// there before.
func (s *Store) Update(r Rule) *Outcome {
	s.mu.Lock()
	var prev *Rule
	if i := s.indexOf(r.ID); i >= 0 {
		p := s.rules[i]
		prev = &p
		s.rules[i] = r
	}
	s.mu.Unlock()

	o := newOutcome()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		updated, err := s.remote.Update(ctx, r)
		if err != nil {
			s.mu.Lock()
			if prev != nil {
				if i := s.indexOf(r.ID); i >= 0 {
					s.rules[i] = *prev
				}
			}
			s.mu.Unlock()
			o.resolve(StatusReverted, &RemotePersistenceError{Op: "update", Err: err})
			return
		}
		s.mu.Lock()
		if i := s.indexOf(r.ID); i >= 0 {
			s.rules[i] = updated
		}
		s.mu.Unlock()
		s.recordEvent(r.ID, "updated")
		o.resolve(StatusConfirmed, nil)
	}()
	return o
}

// Delete removes the matching rule locally and from the remote
// collaborator. Deleting an absent id is a no-op that still confirms.
// A remote failure puts the rule back where it was.
func (s *Store) Delete(id string) *Outcome {
	s.mu.Lock()
	var removed *Rule
	var at int
	if i := s.indexOf(id); i >= 0 {
		r := s.rules[i]
		removed = &r
		at = i
		s.rules = append(s.rules[:i], s.rules[i+1:]...)
	}
	s.mu.Unlock()

	o := newOutcome()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := s.remote.Delete(ctx, id); err != nil {
			s.mu.Lock()
			if removed != nil && s.indexOf(id) < 0 {
				if at > len(s.rules) {
					at = len(s.rules)
				}
				s.rules = append(s.rules[:at], append([]Rule{*removed}, s.rules[at:]...)...)
			}
			s.mu.Unlock()
			o.resolve(StatusReverted, &RemotePersistenceError{Op: "delete", Err: err})
			return
		}
		if removed != nil {
			s.recordEvent(id, "deleted")
		}
		o.resolve(StatusConfirmed, nil)
	}()
	return o
}

// ToggleActive flips IsActive on the matching rule and returns the new
// copy. The flip is local-only and immediate; the remote collaborator is
// notified in the background and a failure there never un-flips the
// switch. A missing id is a no-op.
func (s *Store) ToggleActive(id string) (Rule, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Rule{}, false
	}
	s.rules[i].IsActive = !s.rules[i].IsActive
	r := s.rules[i]
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if _, err := s.remote.Toggle(ctx, id); err != nil {
			log.Printf("RULES: remote toggle for rule %s not confirmed: %v", id, err)
			return
		}
		s.recordEvent(id, "toggled")
	}()
	return r, true
}

// Summaries returns the display surface for every rule, in order.
func (s *Store) Summaries() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, len(s.rules))
	for i, r := range s.rules {
		out[i] = Summarize(r)
	}
	return out
}

// indexOf returns the position of a rule id, or -1. Callers hold s.mu.
func (s *Store) indexOf(id string) int {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) recordEvent(ruleID, event string) {
	if s.audit != nil {
		s.audit.RecordRuleEvent(ruleID, event)
	}
}
