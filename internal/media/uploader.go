package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUploaderClosed is returned by Accept after Shutdown has been called.
var ErrUploaderClosed = errors.New("uploader is shut down")

// errAbandoned marks tasks still queued when a non-draining shutdown ran.
var errAbandoned = errors.New("upload abandoned at shutdown")

// errCancelled marks tasks the accepting request called off before the
// worker reached them.
var errCancelled = errors.New("upload cancelled")

// Task is the future for one background replication. The accepting request
// usually discards it; callers that may abort keep it to Cancel.
type Task struct {
	Image *Image

	data      []byte
	folder    string
	done      chan struct{}
	err       error
	cancelled atomic.Bool
}

// Done closes when the background replication has finished, one way or the
// other.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err reports the replication outcome. Only valid after Done has closed.
func (t *Task) Err() error { return t.err }

// Cancel asks the worker to skip this task's remote replication, so a
// request that accepted files and then failed does not strand assets in the
// remote store. Only effective before the worker picks the task up; an
// in-flight upload is not interrupted.
func (t *Task) Cancel() { t.cancelled.Store(true) }

func (t *Task) finish(err error) {
	t.err = err
	t.data = nil
	close(t.done)
}

// Uploader is the hybrid upload orchestrator: it persists accepted files
// locally at once and replicates them to the remote store from a FIFO queue
// drained by a single worker, so at most one remote upload is in flight per
// instance.
type Uploader struct {
	remote  RemoteStore
	repo    Repository
	local   *LocalStore
	log     *zap.Logger
	timeout time.Duration

	queue chan *Task
	quit  chan struct{}
	wg    sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	accepting sync.WaitGroup
}

// NewUploader starts the background worker immediately.
func NewUploader(remote RemoteStore, repo Repository, local *LocalStore, log *zap.Logger, queueSize int, timeout time.Duration) *Uploader {
	if queueSize <= 0 {
		queueSize = 64
	}
	u := &Uploader{
		remote:  remote,
		repo:    repo,
		local:   local,
		log:     log,
		timeout: timeout,
		queue:   make(chan *Task, queueSize),
		quit:    make(chan struct{}),
	}
	u.wg.Add(1)
	go u.run()
	return u
}

// Accept writes the file to local storage under a generated unique name and
// enqueues its remote replication. It returns before any remote call is
// attempted; the returned record is immediately servable via its local path.
func (u *Uploader) Accept(ctx context.Context, data []byte, originalName, folder string) (*Image, *Task, error) {
	// The mutex guards only the closed check: the disk write and the queue
	// send can both block, and a stalled accept must not stall the others.
	// Shutdown waits for in-flight accepts before closing the queue.
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil, nil, ErrUploaderClosed
	}
	u.accepting.Add(1)
	u.mu.Unlock()
	defer u.accepting.Done()

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	localPath, err := u.local.Save(filename, data)
	if err != nil {
		return nil, nil, err
	}

	img := &Image{
		ID:           uuid.New(),
		Filename:     filename,
		OriginalName: originalName,
		LocalPath:    localPath,
		StorageType:  StorageLocal,
		Migration:    MigrationPending,
		Bytes:        int64(len(data)),
		UploadedAt:   time.Now().UTC(),
	}
	if u.remote == nil {
		img.Migration = MigrationNotRequired
	}

	task := &Task{Image: img, data: data, folder: folder, done: make(chan struct{})}
	select {
	case u.queue <- task:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	return img, task, nil
}

// Shutdown stops the worker. With drain=true it processes everything already
// queued first; with drain=false queued tasks are abandoned (their local
// copies and pending status remain on disk and in the database).
func (u *Uploader) Shutdown(drain bool) {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	u.mu.Unlock()

	// In-flight accepts finish their sends before the queue closes; the
	// worker keeps receiving, so none of them can block forever.
	u.accepting.Wait()
	close(u.queue)

	if !drain {
		close(u.quit)
	}
	u.wg.Wait()
}

// Stats reports the current queue depth, for diagnostics endpoints.
func (u *Uploader) Stats() int { return len(u.queue) }

func (u *Uploader) run() {
	defer u.wg.Done()
	for task := range u.queue {
		select {
		case <-u.quit:
			task.finish(errAbandoned)
			continue
		default:
		}
		u.process(task)
	}
}

// process replicates one file. Failures are logged and persisted as a failed
// migration; they never propagate to the request that accepted the file.
func (u *Uploader) process(task *Task) {
	img := task.Image
	if task.cancelled.Load() {
		task.finish(errCancelled)
		return
	}
	if u.remote == nil {
		// Local-only deployment: the file stays where it is.
		task.finish(nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()

	if err := u.repo.MarkMigrating(ctx, img.Filename); err != nil {
		u.log.Warn("mark migrating failed", zap.String("filename", img.Filename), zap.Error(err))
	}

	name := strings.TrimSuffix(img.Filename, filepath.Ext(img.Filename))
	asset, err := u.remote.Upload(ctx, task.data, task.folder, name)
	if err != nil {
		u.log.Error("remote upload failed, local copy stays authoritative",
			zap.String("filename", img.Filename), zap.Error(err))
		if dberr := u.repo.MarkFailed(ctx, img.Filename); dberr != nil {
			u.log.Error("mark failed", zap.String("filename", img.Filename), zap.Error(dberr))
		}
		img.Migration = MigrationFailed
		task.finish(err)
		return
	}

	// The row may not be visible yet: the request that accepted this file
	// commits it after enqueueing. Retry briefly before giving up.
	var perr error
	for attempt := 0; attempt < 3; attempt++ {
		if perr = u.repo.MarkMigrated(ctx, img.Filename, asset); perr == nil {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	if perr != nil {
		u.log.Error("persist migration result failed",
			zap.String("filename", img.Filename), zap.Error(perr))
		// Without a row to record it the remote copy would be
		// unreachable forever, so take it back down.
		dctx, dcancel := context.WithTimeout(context.Background(), u.timeout)
		defer dcancel()
		if derr := u.remote.Delete(dctx, asset.ID); derr != nil {
			u.log.Error("remove orphaned remote asset",
				zap.String("remote_id", asset.ID), zap.Error(derr))
		}
		task.finish(perr)
		return
	}

	now := time.Now().UTC()
	img.RemoteID = asset.ID
	img.RemoteURL = asset.URL
	img.Width = asset.Width
	img.Height = asset.Height
	img.Format = asset.Format
	img.StorageType = StorageHybrid
	img.Migration = MigrationCompleted
	img.RemoteUploadedAt = &now

	u.log.Info("image replicated to remote store",
		zap.String("filename", img.Filename),
		zap.String("remote_id", asset.ID))
	task.finish(nil)
}
