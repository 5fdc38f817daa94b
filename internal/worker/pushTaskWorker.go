package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
)

const (
	defaultBatchSize = 25
	defaultInterval  = 10 * time.Second
	flushTimeout     = 30 * time.Second
)

// Task is one record waiting to be pushed for its owner.
type Task struct {
	OwnerID string
	Record  models.UtmRecord
}

// StoreResolver returns the remote store configured for an owner.
type StoreResolver interface {
	StoreFor(ownerID string) (remote.Store, bool)
}

// Observer is notified about every push outcome.
type Observer interface {
	ObservePush(result models.PushResult)
}

type PushTaskWorker struct {
	in        chan Task
	logger    *zap.Logger
	stores    StoreResolver
	observer  Observer
	delay     time.Duration
	batchSize int
	interval  time.Duration
}

func NewPushTaskWorker(logger *zap.Logger, stores StoreResolver, delay time.Duration) *PushTaskWorker {
	return &PushTaskWorker{
		in:        make(chan Task, defaultBatchSize*4),
		logger:    logger,
		stores:    stores,
		delay:     delay,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
}

// WithInterval changes how often a partial batch is flushed.
func (w *PushTaskWorker) WithInterval(d time.Duration) *PushTaskWorker {
	w.interval = d
	return w
}

func (w *PushTaskWorker) WithObserver(o Observer) *PushTaskWorker {
	w.observer = o
	return w
}

func (w *PushTaskWorker) GetInChannel() chan<- Task {
	return w.in
}

// Run collects tasks and pushes them whenever the batch is full or the
// interval elapses. Pending and buffered tasks are flushed once more when
// ctx is done.
func (w *PushTaskWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var tasks []Task

	for {
		select {
		case task := <-w.in:
			tasks = append(tasks, task)
			if len(tasks) >= w.batchSize {
				w.flush(tasks)
				tasks = tasks[:0]
			}
		case <-ticker.C:
			if len(tasks) == 0 {
				continue
			}
			w.flush(tasks)
			tasks = tasks[:0]
		case <-ctx.Done():
			tasks = w.drain(tasks)
			if len(tasks) > 0 {
				w.flush(tasks)
			}
			return
		}
	}
}

// drain appends the tasks already buffered in the channel.
func (w *PushTaskWorker) drain(tasks []Task) []Task {
	for {
		select {
		case task := <-w.in:
			tasks = append(tasks, task)
		default:
			return tasks
		}
	}
}

func (w *PushTaskWorker) flush(tasks []Task) {
	w.logger.Info("Flushing push tasks", zap.Int("count", len(tasks)))

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	var owners []string
	byOwner := make(map[string][]models.UtmRecord)
	for _, t := range tasks {
		if _, ok := byOwner[t.OwnerID]; !ok {
			owners = append(owners, t.OwnerID)
		}
		byOwner[t.OwnerID] = append(byOwner[t.OwnerID], t.Record)
	}

	for _, owner := range owners {
		store, ok := w.stores.StoreFor(owner)
		if !ok {
			w.logger.Debug("No remote configured, skipping push", zap.String("owner", owner))
			continue
		}

		res, err := remote.PushBatch(ctx, store, owner, byOwner[owner], w.delay)
		if err != nil {
			w.logger.Warn("Push batch stopped", zap.String("owner", owner), zap.Error(err))
		}
		for _, item := range res.Results {
			w.logger.Info("Pushed record",
				zap.String("owner", owner),
				zap.Int("index", item.Index),
				zap.String("result", item.Result),
				zap.String("error", item.Error),
			)
			if w.observer != nil {
				w.observer.ObservePush(parseResult(item.Result))
			}
		}
	}
}

func parseResult(s string) models.PushResult {
	switch s {
	case models.PushSucceeded.String():
		return models.PushSucceeded
	case models.PushUnconfirmed.String():
		return models.PushUnconfirmed
	default:
		return models.PushFailed
	}
}
