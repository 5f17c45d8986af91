package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/messagely/messaging-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// LoginToucher is the slice of the account service the recorder needs.
type LoginToucher interface {
	TouchLogin(ctx context.Context, username string) error
}

// LoginRecorder applies last-login timestamp updates off the request path.
// A login or registration response may be observed before the update is
// durable. Failures are logged and counted, never propagated. Usernames are
// routed to a fixed worker by consistent hashing, so updates for one account
// stay ordered.
type LoginRecorder struct {
	workers []chan string
	service LoginToucher
	log     zerolog.Logger
}

// NewLoginRecorder creates a LoginRecorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewLoginRecorder(numWorkers int, service LoginToucher, log zerolog.Logger) *LoginRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &LoginRecorder{
		workers: make([]chan string, numWorkers),
		service: service,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan string, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *LoginRecorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues a last-login update for username. Non-blocking up to
// channelBuffer capacity.
func (r *LoginRecorder) Record(username string) {
	r.workers[r.shardIndex(username)] <- username
}

// shardIndex maps a username deterministically to a worker index.
func (r *LoginRecorder) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(r.workers)
}

func (r *LoginRecorder) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case username, ok := <-ch:
			if !ok {
				return
			}
			if err := r.service.TouchLogin(ctx, username); err != nil {
				metrics.LoginTouchFailuresTotal.Inc()
				r.log.Warn().Err(err).
					Str("username", username).
					Int("worker_id", id).
					Msg("last-login update failed")
			}
		}
	}
}
