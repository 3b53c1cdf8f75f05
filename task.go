package mlfairy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// taskPhase is the acquisition state machine's tagged state. Transitions go
// through advance, which rejects anything the machine does not allow, so a
// stage can never run twice and nothing runs after a terminal state.
type taskPhase int

const (
	phaseCreated taskPhase = iota
	phaseFetchingMetadata
	phaseUsingCachedArtifact
	phaseDownloadingArtifact
	phaseVerifyingChecksum
	phaseCompiling
	phaseFinished
)

// String returns the phase name for diagnostics.
func (p taskPhase) String() string {
	switch p {
	case phaseCreated:
		return "created"
	case phaseFetchingMetadata:
		return "fetching-metadata"
	case phaseUsingCachedArtifact:
		return "using-cached-artifact"
	case phaseDownloadingArtifact:
		return "downloading-artifact"
	case phaseVerifyingChecksum:
		return "verifying-checksum"
	case phaseCompiling:
		return "compiling"
	case phaseFinished:
		return "finished"
	}
	return "unknown"
}

// canAdvance reports whether the transition p → next is legal.
// Every non-terminal phase may short-circuit to finished.
func (p taskPhase) canAdvance(next taskPhase) bool {
	if p == phaseFinished {
		return false
	}
	if next == phaseFinished {
		return true
	}
	switch p {
	case phaseCreated:
		return next == phaseFetchingMetadata
	case phaseFetchingMetadata:
		return next == phaseUsingCachedArtifact || next == phaseDownloadingArtifact
	case phaseUsingCachedArtifact, phaseDownloadingArtifact:
		return next == phaseVerifyingChecksum
	case phaseVerifyingChecksum:
		return next == phaseCompiling
	}
	return false
}

// taskState is the single mutable record owned by a DownloadTask. Every
// field is read and written exclusively through the task's guarded cell.
type taskState struct {
	// phase is the current state machine position.
	phase taskPhase

	// userID is the advisory caller-supplied identifier from Tag.
	userID string

	// err is the terminal error, set exactly once at completion.
	err error

	// metadata is the last successfully obtained metadata record, from the
	// network or the disk fallback.
	metadata *ModelMetadata

	// metadataCancel and downloadCancel are handles to outstanding network
	// operations, cleared as soon as their response arrives. Cancel uses
	// them to abort in-flight requests.
	metadataCancel context.CancelFunc
	downloadCancel context.CancelFunc

	// artifactPath is the resolved location of the raw model artifact.
	artifactPath string

	// compiled holds the compiled model and its location once compilation
	// succeeds.
	compiled CompiledModel

	// callbacks is the ordered pending-completion sequence. Appended to
	// before completion, captured and cleared exactly once at completion.
	callbacks []func()
}

// DownloadTask drives the acquisition of one model: fetch metadata, reuse
// or download the artifact, verify its checksum, compile it, and notify
// subscribers. One task instance handles one token and runs its pipeline at
// most once.
//
// Stages execute strictly sequentially on the task's work queue, except
// compilation, which runs on a separate queue so compilation latency never
// delays network response handling. All shared state lives in a single
// mutex-guarded record.
type DownloadTask struct {
	id    string
	token string

	network  Network
	storage  Storage
	compiler Compiler
	logger   Logger
	device   DeviceInfo

	// work runs network stages and the completion drain.
	work *serialQueue

	// compileQueue isolates compilation from network callback delivery.
	compileQueue *serialQueue

	state *guarded[taskState]

	ctx    context.Context
	cancel context.CancelFunc
}

// newDownloadTask constructs an unstarted task for a token.
func newDownloadTask(token string, device DeviceInfo, network Network, storage Storage, compiler Compiler, logger Logger) *DownloadTask {
	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadTask{
		id:           uuid.NewString(),
		token:        token,
		network:      network,
		storage:      storage,
		compiler:     compiler,
		logger:       logger,
		device:       device,
		work:         newSerialQueue(),
		compileQueue: newSerialQueue(),
		state:        newGuarded(taskState{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ID returns the task's correlation identifier, present in every log line
// the task emits.
func (t *DownloadTask) ID() string { return t.id }

// Token returns the token this task acquires a model for.
func (t *DownloadTask) Token() string { return t.token }

// Tag records an advisory caller identifier. It has no effect on the
// pipeline and is safe to call at any time.
func (t *DownloadTask) Tag(userID string) *DownloadTask {
	t.state.write(func(s *taskState) { s.userID = userID })
	return t
}

// Start begins the pipeline. Only the first call has any effect; later
// calls return immediately.
func (t *DownloadTask) Start() *DownloadTask {
	if !t.advance(phaseFetchingMetadata) {
		return t
	}
	t.work.Async(t.fetchMetadata)
	return t
}

// Subscribe registers fn for the task's terminal result, delivered on the
// given Executor (GoExecutor if nil). Every subscriber is notified exactly
// once, in registration order, regardless of whether it registers before or
// after completion; late subscribers receive the same (model, error)
// snapshot as everyone else.
func (t *DownloadTask) Subscribe(on Executor, fn CompletionFunc) *DownloadTask {
	if on == nil {
		on = GoExecutor
	}

	notify := func() {
		var model Model
		var err error
		t.state.read(func(s taskState) {
			err = s.err
			if err == nil {
				model = s.compiled.Model
			}
		})
		on.Async(func() { fn(model, err) })
	}

	finished := false
	t.state.write(func(s *taskState) {
		if s.phase == phaseFinished {
			finished = true
			return
		}
		s.callbacks = append(s.callbacks, notify)
	})

	// Registered after completion: drain just this callback, still on the
	// completion work queue so ordering against earlier drains holds.
	if finished {
		t.work.Async(notify)
	}
	return t
}

// Cancel aborts in-flight network and compilation work and finishes the
// task with ErrCancelled, unless it already reached a terminal state.
func (t *DownloadTask) Cancel() {
	t.cancel()

	var pending []context.CancelFunc
	finished := false
	t.state.read(func(s taskState) {
		finished = s.phase == phaseFinished
		if s.metadataCancel != nil {
			pending = append(pending, s.metadataCancel)
		}
		if s.downloadCancel != nil {
			pending = append(pending, s.downloadCancel)
		}
	})
	for _, c := range pending {
		c()
	}

	if !finished {
		t.finish(ErrCancelled)
	}
}

// advance moves the state machine to next if the transition is legal.
func (t *DownloadTask) advance(next taskPhase) bool {
	ok := false
	t.state.write(func(s *taskState) {
		if s.phase.canAdvance(next) {
			s.phase = next
			ok = true
		}
	})
	return ok
}

// cancelled reports whether Cancel has been called.
func (t *DownloadTask) cancelled() bool { return t.ctx.Err() != nil }

// fetchMetadata runs on the work queue and issues the metadata request.
func (t *DownloadTask) fetchMetadata() {
	if t.cancelled() {
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	var userID string
	t.state.write(func(s *taskState) {
		s.metadataCancel = cancel
		userID = s.userID
	})

	md, err := t.network.FetchMetadata(ctx, MetadataRequest{
		Token:  t.token,
		UserID: userID,
		Device: t.device,
	})

	t.state.write(func(s *taskState) { s.metadataCancel = nil })
	cancel()

	t.onMetadataResult(md, err)
}

// onMetadataResult persists fresh metadata and moves to artifact
// resolution, or falls back to the last-known-good cached pair when the
// fetch failed.
func (t *DownloadTask) onMetadataResult(md ModelMetadata, err error) {
	if t.cancelled() {
		return
	}

	if err != nil {
		cached, cerr := t.storage.FindCached(t.token)
		if cerr != nil {
			t.finish(fmt.Errorf("%w: %v", ErrDownloadFailed, err))
			return
		}
		if t.logger != nil {
			t.logger.Debug("metadata fetch failed, falling back to cached model",
				"task", t.id, "token", t.token, "error", err)
		}
		md = cached.Metadata
		t.state.write(func(s *taskState) { s.metadata = &md })
		t.resolveArtifact(md)
		return
	}

	// Some servers omit the token in the response body; destination paths
	// are keyed by it.
	if md.Token == "" {
		md.Token = t.token
	}

	if serr := t.storage.SaveMetadata(t.token, md); serr != nil && t.logger != nil {
		t.logger.Warn("failed to persist model metadata", "task", t.id, "error", serr)
	}

	t.state.write(func(s *taskState) { s.metadata = &md })
	t.resolveArtifact(md)
}

// resolveArtifact decides between reusing an artifact already at the
// expected destination and downloading a fresh one. An existing file wins
// unconditionally; destination paths are version-keyed, so a new active
// version always lands in a new path.
func (t *DownloadTask) resolveArtifact(md ModelMetadata) {
	if md.ActiveVersion == "" || md.ModelFileURL == "" {
		t.finish(ErrNoDownloadAvailable)
		return
	}

	dest := t.storage.DestinationPath(md)
	if t.storage.Exists(dest) {
		if !t.advance(phaseUsingCachedArtifact) {
			return
		}
		if t.logger != nil {
			t.logger.Debug("artifact already on disk, skipping download",
				"task", t.id, "token", t.token, "path", dest)
		}
		t.state.write(func(s *taskState) { s.artifactPath = dest })
		t.verifyChecksum(md, dest)
		return
	}

	if !t.advance(phaseDownloadingArtifact) {
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	t.state.write(func(s *taskState) { s.downloadCancel = cancel })

	path, err := t.network.DownloadFile(ctx, md.ModelFileURL, dest)

	t.state.write(func(s *taskState) { s.downloadCancel = nil })
	cancel()

	t.onDownloadResult(md, path, err)
}

// onDownloadResult records the downloaded artifact and moves to checksum
// verification.
func (t *DownloadTask) onDownloadResult(md ModelMetadata, path string, err error) {
	if t.cancelled() {
		return
	}
	if err != nil {
		t.finish(fmt.Errorf("%w: %v", ErrDownloadFailed, err))
		return
	}

	t.state.write(func(s *taskState) { s.artifactPath = path })
	t.verifyChecksum(md, path)
}

// verifyChecksum applies the checksum policy and moves to compilation.
func (t *DownloadTask) verifyChecksum(md ModelMetadata, path string) {
	if !t.advance(phaseVerifyingChecksum) {
		return
	}

	if err := verifyArtifact(t.storage, t.logger, md, path); err != nil {
		t.finish(err)
		return
	}

	t.compileArtifact(path)
}

// compileArtifact hands the verified artifact to the compiler on the
// dedicated compilation queue.
func (t *DownloadTask) compileArtifact(path string) {
	if !t.advance(phaseCompiling) {
		return
	}

	t.compileQueue.Async(func() {
		if t.cancelled() {
			return
		}

		cm, err := t.compiler.Compile(t.ctx, path)
		if err != nil {
			if t.cancelled() {
				return
			}
			t.finish(fmt.Errorf("%w: %v", ErrCompilationFailed, err))
			return
		}

		t.state.write(func(s *taskState) { s.compiled = cm })
		t.finish(nil)
	})
}

// finish is the single completion point. It records the terminal result and
// drains the pending callbacks on the work queue, in registration order.
// A second call (possible only through Cancel racing a terminal stage) is a
// no-op: the first recorded result wins, and only that result is logged.
func (t *DownloadTask) finish(err error) {
	t.work.Async(func() {
		var cbs []func()
		recorded := false
		t.state.write(func(s *taskState) {
			if s.phase == phaseFinished {
				return
			}
			s.phase = phaseFinished
			s.err = err
			cbs = s.callbacks
			s.callbacks = nil
			recorded = true
		})
		if recorded && err != nil {
			t.logFailure(err)
		}
		for _, cb := range cbs {
			cb()
		}
	})
}

// logFailure emits a kind-specific description of a terminal error.
func (t *DownloadTask) logFailure(err error) {
	if t.logger == nil {
		return
	}

	var msg string
	switch {
	case errors.Is(err, ErrNoDownloadAvailable):
		msg = "no model available for download"
	case errors.Is(err, ErrChecksumMismatch):
		msg = "model artifact failed checksum verification"
	case errors.Is(err, ErrChecksum):
		msg = "failed to compute artifact checksum"
	case errors.Is(err, ErrCompilationFailed):
		msg = "model compilation failed"
	case errors.Is(err, ErrCancelled):
		msg = "model acquisition cancelled"
	default:
		msg = "model download failed"
	}
	t.logger.Debug(msg, "task", t.id, "token", t.token, "error", err)
}
