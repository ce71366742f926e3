package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// WriteFunc performs database writes inside a batch transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// ErrWriterClosed is returned by Submit after Close.
var ErrWriterClosed = errors.New("batch writer closed")

// BatchWriter buffers writes and commits them in batches, each batch in one
// transaction. A batch is flushed when it is full, when the flush interval
// elapses, or on Close.
type BatchWriter struct {
	db   *sql.DB
	size int

	mu     sync.Mutex
	buf    []WriteFunc
	closed bool

	batches chan []WriteFunc
	stop    chan struct{}
	wg      sync.WaitGroup

	// OnError is called for every failed batch, from the committer goroutine.
	OnError func(error)

	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter starts a writer committing batches of size writes.
// flushInterval of 0 disables time-based flushing.
func NewBatchWriter(db *sql.DB, size int, flushInterval time.Duration) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	bw := &BatchWriter{
		db:      db,
		size:    size,
		buf:     make([]WriteFunc, 0, size),
		batches: make(chan []WriteFunc, 2),
		stop:    make(chan struct{}),
	}
	bw.wg.Add(1)
	go bw.commitLoop()
	if flushInterval > 0 {
		bw.wg.Add(1)
		go bw.tickLoop(flushInterval)
	}
	return bw
}

// Submit queues w. It blocks when the committer falls behind.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.size {
		bw.flushLocked()
	}
	return nil
}

// flushLocked hands the buffer to the committer; bw.mu must be held.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	bw.batches <- bw.buf
	bw.buf = make([]WriteFunc, 0, bw.size)
}

func (bw *BatchWriter) tickLoop(interval time.Duration) {
	defer bw.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-bw.stop:
			return
		case <-ticker.C:
			bw.mu.Lock()
			if !bw.closed {
				bw.flushLocked()
			}
			bw.mu.Unlock()
		}
	}
}

func (bw *BatchWriter) commitLoop() {
	defer bw.wg.Done()
	for batch := range bw.batches {
		if err := bw.commit(batch); err != nil {
			bw.errMu.Lock()
			if bw.lastErr == nil {
				bw.lastErr = err
			}
			bw.errMu.Unlock()
			if bw.OnError != nil {
				bw.OnError(err)
			}
		}
	}
}

func (bw *BatchWriter) commit(batch []WriteFunc) error {
	ctx := context.Background()
	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()
	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Close flushes pending writes, waits for them to commit and returns the
// first error any batch hit.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrWriterClosed
	}
	bw.closed = true
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.stop)
	close(bw.batches)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}
