package rules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersistence struct {
	mu      sync.Mutex
	rules   map[string]Rule
	listed  []Rule
	fail    map[string]bool // op name -> force failure
	toggled chan string
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		rules:   make(map[string]Rule),
		fail:    make(map[string]bool),
		toggled: make(chan string, 8),
	}
}

func (f *fakePersistence) List(ctx context.Context) ([]Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail["list"] {
		return nil, errors.New("boom")
	}
	return f.listed, nil
}

func (f *fakePersistence) Create(ctx context.Context, r Rule) (Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail["create"] {
		return Rule{}, errors.New("boom")
	}
	f.rules[r.ID] = r
	return r, nil
}

func (f *fakePersistence) Update(ctx context.Context, r Rule) (Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail["update"] {
		return Rule{}, errors.New("boom")
	}
	f.rules[r.ID] = r
	return r, nil
}

func (f *fakePersistence) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail["delete"] {
		return errors.New("boom")
	}
	delete(f.rules, id)
	return nil
}

func (f *fakePersistence) Toggle(ctx context.Context, id string) (Rule, error) {
	f.mu.Lock()
	err := f.fail["toggle"]
	r := f.rules[id]
	f.mu.Unlock()
	defer func() { f.toggled <- id }()
	if err {
		return Rule{}, errors.New("boom")
	}
	return r, nil
}

func (f *fakePersistence) setFail(op string, on bool) {
	f.mu.Lock()
	f.fail[op] = on
	f.mu.Unlock()
}

func (f *fakePersistence) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rules[id]
	return ok
}

type captureAuditor struct {
	mu     sync.Mutex
	events []string
}

func (c *captureAuditor) RecordRuleEvent(ruleID, event string) {
	c.mu.Lock()
	c.events = append(c.events, ruleID+":"+event)
	c.mu.Unlock()
}

func (c *captureAuditor) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func testRule(id, name string) Rule {
	return Rule{
		ID:   id,
		Name: name,
		Conditions: []Condition{
			{ID: id + "-c1", Type: ConditionTime, Operator: OpEqual, Value: "22:00"},
		},
		Actions: []Action{
			{ID: id + "-a1", Type: ActionToggle, Value: "off"},
		},
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStoreLoad(t *testing.T) {
	fake := newFakePersistence()
	fake.listed = []Rule{testRule("r1", "one"), testRule("r2", "two")}
	s := NewStore(fake, nil)

	require.NoError(t, s.Load(context.Background()))
	got := s.Rules()
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)

	fake.setFail("list", true)
	err := s.Load(context.Background())
	var rerr *RemotePersistenceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "list", rerr.Op)
}

func TestStoreCreateConfirmed(t *testing.T) {
	fake := newFakePersistence()
	audit := &captureAuditor{}
	s := NewStore(fake, audit)

	o := s.Create(testRule("r1", "Night Saver"))
	// Optimistic: visible before the remote resolves.
	_, ok := s.Get("r1")
	assert.True(t, ok)

	status, err := o.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)
	assert.True(t, fake.has("r1"))
	assert.Contains(t, audit.all(), "r1:created")
}

func TestStoreCreateReverted(t *testing.T) {
	fake := newFakePersistence()
	fake.setFail("create", true)
	s := NewStore(fake, nil)

	o := s.Create(testRule("r1", "Night Saver"))
	status, err := o.Wait(waitCtx(t))
	assert.Equal(t, StatusReverted, status)
	var rerr *RemotePersistenceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "create", rerr.Op)

	_, ok := s.Get("r1")
	assert.False(t, ok, "reverted create removes the local entry")
	assert.Equal(t, 0, s.Len())
}

func TestStoreUpdate(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	o := s.Create(testRule("r1", "before"))
	_, err := o.Wait(waitCtx(t))
	require.NoError(t, err)

	changed := testRule("r1", "after")
	status, err := s.Update(changed).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)
	got, _ := s.Get("r1")
	assert.Equal(t, "after", got.Name)
}

func TestStoreUpdateMissingIDIsNoInsert(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)

	_, err := s.Update(testRule("ghost", "nobody")).Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len(), "update never inserts")
}

func TestStoreUpdateReverted(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "before")).Wait(waitCtx(t))
	require.NoError(t, err)

	fake.setFail("update", true)
	status, err := s.Update(testRule("r1", "after")).Wait(waitCtx(t))
	assert.Equal(t, StatusReverted, status)
	assert.Error(t, err)
	got, _ := s.Get("r1")
	assert.Equal(t, "before", got.Name, "failed update restores the previous entry")
}

func TestStoreDeleteIdempotent(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "one")).Wait(waitCtx(t))
	require.NoError(t, err)

	status, err := s.Delete("r1").Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)
	assert.Equal(t, 0, s.Len())

	// Deleting again is a quiet no-op.
	status, err = s.Delete("r1").Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)
}

func TestStoreDeleteReverted(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "one")).Wait(waitCtx(t))
	require.NoError(t, err)
	_, err = s.Create(testRule("r2", "two")).Wait(waitCtx(t))
	require.NoError(t, err)

	fake.setFail("delete", true)
	status, err := s.Delete("r1").Wait(waitCtx(t))
	assert.Equal(t, StatusReverted, status)
	assert.Error(t, err)

	got := s.Rules()
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID, "reverted delete restores order")
}

func TestToggleActive(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "one")).Wait(waitCtx(t))
	require.NoError(t, err)

	r, ok := s.ToggleActive("r1")
	require.True(t, ok)
	assert.False(t, r.IsActive)
	<-fake.toggled

	r, ok = s.ToggleActive("r1")
	require.True(t, ok)
	assert.True(t, r.IsActive, "toggling twice restores the original value")
	<-fake.toggled

	_, ok = s.ToggleActive("ghost")
	assert.False(t, ok)
}

func TestToggleRemoteFailureKeepsLocalFlip(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "one")).Wait(waitCtx(t))
	require.NoError(t, err)

	fake.setFail("toggle", true)
	r, ok := s.ToggleActive("r1")
	require.True(t, ok)
	assert.False(t, r.IsActive)
	<-fake.toggled

	got, _ := s.Get("r1")
	assert.False(t, got.IsActive, "a failed remote toggle never un-flips the switch")
}

func TestStoreSummaries(t *testing.T) {
	fake := newFakePersistence()
	s := NewStore(fake, nil)
	_, err := s.Create(testRule("r1", "one")).Wait(waitCtx(t))
	require.NoError(t, err)

	sums := s.Summaries()
	require.Len(t, sums, 1)
	assert.Equal(t, "When time is = 22:00", sums[0].Conditions)
	assert.Equal(t, "Turn off device", sums[0].Actions)
	assert.True(t, sums[0].IsActive)
}
