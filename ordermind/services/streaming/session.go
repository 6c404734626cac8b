package streaming

import (
	"context"
	"strings"
	"sync"
	"time"

	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	StateStreaming State = iota
	StateCompleted
	StateFailed
	StateClientClosed
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateClientClosed:
		return "client_closed"
	}
	return "unknown"
}

// Memory is where a finished exchange is recorded.
type Memory interface {
	Create(ctx context.Context, turn *models.ChatTurn) error
}

// persistTimeout bounds the two memory writes, which run after the client
// request may already be gone.
const persistTimeout = 10 * time.Second

type Options struct {
	ResourceID string
	Prompt     string
	Format     string
	// Timeout bounds the token source. Zero means unbounded.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Session owns a single chat exchange. It is created per request and must
// not be reused.
type Session struct {
	ResourceID string
	Prompt     string
	Format     string

	source  TokenSource
	emitter Emitter
	memory  Memory
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	content strings.Builder
	// cancel stops the upstream call once a terminal state is reached
	cancel context.CancelFunc

	persisted chan struct{}
	now       func() time.Time
}

func NewSession(opts Options, source TokenSource, emitter Emitter, memory Memory) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logging.AppLogger
	}
	return &Session{
		ResourceID: opts.ResourceID,
		Prompt:     opts.Prompt,
		Format:     opts.Format,
		source:     source,
		emitter:    emitter,
		memory:     memory,
		timeout:    opts.Timeout,
		logger:     logger.With(zap.String("resource_id", opts.ResourceID)),
		state:      StateStreaming,
		cancel:     func() {},
		persisted:  make(chan struct{}),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Content returns the text accumulated so far.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.String()
}

// Run drives the token source until a terminal state and returns it. The
// request context signals client disconnect. Run returns without waiting for
// the memory writes; use Wait for that.
func (s *Session) Run(ctx context.Context) State {
	defer logging.LogDuration(ctx, "stream_session_run")()

	// upstream is detached from the request; a disconnect is seen by the
	// watcher below, which cancels it through terminate
	var (
		upstream context.Context
		cancel   context.CancelFunc
	)
	if s.timeout > 0 {
		upstream, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	} else {
		upstream, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	sourceDone := make(chan struct{})
	defer close(sourceDone)
	go func() {
		select {
		case <-ctx.Done():
			s.terminate(StateClientClosed)
		case <-upstream.Done():
			if upstream.Err() == context.DeadlineExceeded {
				s.logger.Warn("chat stream timed out", zap.Duration("timeout", s.timeout))
				s.terminate(StateFailed)
			}
		case <-sourceDone:
		}
	}()

	s.source.Stream(upstream, s.Prompt, s.Format, s.deliver)

	// a source that returns without a terminal fragment ended abnormally
	s.terminate(StateFailed)
	return s.State()
}

// Wait blocks until the terminal memory writes have been attempted.
func (s *Session) Wait() {
	<-s.persisted
}

// deliver is the TokenSource callback. Fragments arriving after a terminal
// state are dropped.
func (s *Session) deliver(f Fragment) {
	switch {
	case f.Err != nil:
		if s.State() == StateStreaming {
			s.logger.Error("token source failed", zap.Error(f.Err))
			logging.ErrorLogger.Error("token source failed",
				zap.String("resource_id", s.ResourceID), zap.Error(f.Err))
		}
		s.terminate(StateFailed)
	case f.Done:
		if s.State() != StateStreaming {
			return
		}
		if err := s.emitter.Emit(Sentinel); err != nil {
			s.terminate(StateClientClosed)
			return
		}
		s.terminate(StateCompleted)
	default:
		if f.Content == "" {
			return
		}
		if f.Content == Sentinel {
			s.logger.Warn("dropping model fragment equal to the stream sentinel")
			return
		}
		s.mu.Lock()
		if s.state != StateStreaming {
			s.mu.Unlock()
			return
		}
		s.content.WriteString(f.Content)
		s.mu.Unlock()

		if err := s.emitter.Emit(f.Content); err != nil {
			s.logger.Info("client write failed", zap.Error(err))
			s.terminate(StateClientClosed)
		}
	}
}

// terminate moves the session out of StateStreaming and runs the terminal
// action. Only the first call has any effect; it reports whether it ran.
func (s *Session) terminate(to State) bool {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return false
	}
	s.state = to
	content := s.content.String()
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if err := s.emitter.Close(); err != nil {
		s.logger.Debug("emitter close", zap.Error(err))
	}
	s.logger.Info("chat stream finished",
		zap.Stringer("state", to),
		zap.Int("content_bytes", len(content)),
	)

	if to == StateFailed && content == "" {
		close(s.persisted)
		return true
	}
	go s.persist(content)
	return true
}

// persist writes the human prompt and the ai response concurrently.
func (s *Session) persist(content string) {
	defer close(s.persisted)
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	ts := s.now()
	// the writes are independent; a failure of one does not cancel the other
	var g errgroup.Group
	for _, t := range []*models.ChatTurn{
		{ResourceID: s.ResourceID, Role: models.RoleHuman, Content: s.Prompt, Timestamp: ts},
		{ResourceID: s.ResourceID, Role: models.RoleAI, Content: content, Timestamp: ts},
	} {
		g.Go(func() error {
			return s.memory.Create(ctx, t)
		})
	}
	if err := g.Wait(); err != nil {
		logging.ErrorLogger.Error("failed to save chat memory",
			zap.String("resource_id", s.ResourceID), zap.Error(err))
	}
}
