package taskqueue

import (
	"log"

	"powerhub/internal/db"

	"github.com/hibiken/asynq"
)

// Worker consumes background tasks.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

// NewWorker creates a task consumer writing through the given database
func NewWorker(redisAddr string, database *db.DB) *Worker {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDeviceUpdate, handleDeviceUpdate(database))
	mux.HandleFunc(TaskRuleEvent, handleRuleEvent(database))
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 10})
	return &Worker{srv: srv, mux: mux}
}

// Run blocks processing tasks until Stop is called
func (w *Worker) Run() {
	log.Println("TASKQUEUE: workers started, waiting for tasks")
	if err := w.srv.Run(w.mux); err != nil {
		log.Fatalf("TASKQUEUE: failed to start workers: %v", err)
	}
}

// Stop shuts the worker down
func (w *Worker) Stop() {
	w.srv.Stop()
	log.Println("TASKQUEUE: workers stopped")
}
