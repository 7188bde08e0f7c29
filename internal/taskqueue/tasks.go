package taskqueue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"powerhub/internal/db"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TaskDeviceUpdate = "device_update"
	TaskRuleEvent    = "rule_event"
)

type deviceUpdatePayload struct {
	DeviceID string          `json:"device_id"`
	State    json.RawMessage `json:"state"`
}

type ruleEventPayload struct {
	RuleID string `json:"rule_id"`
	Event  string `json:"event"`
}

// Queue enqueues background work. It is constructed once in main and
// passed to whoever produces tasks.
type Queue struct {
	client *asynq.Client
}

// NewQueue creates a task producer backed by Redis
func NewQueue(redisAddr string) *Queue {
	return &Queue{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// Close releases the underlying client
func (q *Queue) Close() error {
	return q.client.Close()
}

// EnqueueDeviceUpdate schedules archiving of one telemetry sample
func (q *Queue) EnqueueDeviceUpdate(deviceID string, state json.RawMessage) error {
	payload, err := json.Marshal(deviceUpdatePayload{DeviceID: deviceID, State: state})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskDeviceUpdate, payload)
	_, err = q.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	return err
}

// RecordRuleEvent schedules an audit entry for a rule lifecycle event.
// Fire-and-forget: enqueue failures are logged, never surfaced, so the
// rule store's callers are not blocked on audit plumbing.
func (q *Queue) RecordRuleEvent(ruleID, event string) {
	payload, err := json.Marshal(ruleEventPayload{RuleID: ruleID, Event: event})
	if err != nil {
		log.Printf("TASKQUEUE: failed to encode rule event for %s: %v", ruleID, err)
		return
	}
	task := asynq.NewTask(TaskRuleEvent, payload)
	if _, err := q.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Second)); err != nil {
		log.Printf("TASKQUEUE: failed to enqueue rule event for %s: %v", ruleID, err)
	}
}

func handleDeviceUpdate(database *db.DB) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload deviceUpdatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		return database.InsertDeviceHistory(ctx, payload.DeviceID, payload.State)
	}
}

func handleRuleEvent(database *db.DB) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ruleEventPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		return database.InsertRuleEvent(ctx, payload.RuleID, payload.Event)
	}
}
