package managers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kbforge/kbforge/pkg/domain"
	"github.com/kbforge/kbforge/pkg/utils/pagination"
)

const (
	defaultPollInterval  = 5 * time.Second
	defaultMaxIterations = 120
)

// PollerSnapshot is a read-only view of the current polling session.
type PollerSnapshot struct {
	KnowledgeID string                 `json:"knowledge_id"`
	Active      bool                   `json:"active"`
	Iterations  int                    `json:"iterations"`
	Files       []domain.KnowledgeFile `json:"files"`
}

// IngestionPoller periodically re-fetches a knowledge base's files after an
// upload, until every file reaches a terminal embedding status or the
// iteration cap elapses. At most one session is active per poller; ticks are
// single-flight, and a fetch resolving after Stop is discarded.
type IngestionPoller struct {
	knowledge     domain.KnowledgeManager
	notifier      domain.Notifier
	knowledgeID   string
	interval      time.Duration
	maxIterations int
	pageSize      int
	onRefresh     func(ctx context.Context)

	mu         sync.Mutex
	active     bool
	generation uint64
	iterations int
	inFlight   bool
	cancel     context.CancelFunc
	done       chan struct{}
	files      []domain.KnowledgeFile
}

type IngestionPollerDependencies struct {
	Knowledge   domain.KnowledgeManager
	Notifier    domain.Notifier
	KnowledgeID string

	// OnRefresh runs once per session when the poller stops, regardless of
	// the stop reason.
	OnRefresh func(ctx context.Context)

	// Interval and MaxIterations override the defaults, mainly for tests.
	Interval      time.Duration
	MaxIterations int
	PageSize      int
}

func NewIngestionPoller(deps IngestionPollerDependencies) *IngestionPoller {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}

	interval := deps.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	maxIterations := deps.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	pageSize := pagination.Normalize(pagination.Params{PageSize: deps.PageSize}).PageSize

	return &IngestionPoller{
		knowledge:     deps.Knowledge,
		notifier:      notifier,
		knowledgeID:   deps.KnowledgeID,
		interval:      interval,
		maxIterations: maxIterations,
		pageSize:      pageSize,
		onRefresh:     deps.OnRefresh,
	}
}

// Start begins a polling session. It is a no-op returning false when a
// session is already active, so a second Start never schedules a second
// timer.
func (p *IngestionPoller) Start(ctx context.Context) bool {
	p.mu.Lock()

	if p.active {
		p.mu.Unlock()
		log.Debug().Str("knowledge_id", p.knowledgeID).Msg("polling session already active")
		return false
	}

	p.generation++
	generation := p.generation
	p.active = true
	p.iterations = 0
	p.inFlight = false
	p.done = make(chan struct{})

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.mu.Unlock()

	log.Debug().
		Str("knowledge_id", p.knowledgeID).
		Dur("interval", p.interval).
		Msg("starting ingestion polling")

	go p.run(runCtx, generation)

	return true
}

// Stop ends the active session. It is idempotent; the final list refresh
// fires exactly once per session.
func (p *IngestionPoller) Stop() {
	p.mu.Lock()

	if !p.active {
		p.mu.Unlock()
		return
	}

	cancel := p.cancel
	done := p.done

	p.active = false
	p.iterations = 0
	p.inFlight = false
	p.cancel = nil

	p.mu.Unlock()

	cancel()

	log.Debug().Str("knowledge_id", p.knowledgeID).Msg("ingestion polling stopped")

	if p.onRefresh != nil {
		// The session context is already cancelled at this point and the
		// refresh must still run, e.g. after a teardown stop.
		p.onRefresh(context.Background())
	}

	// Done observers only wake after the final refresh has run.
	close(done)
}

// Done returns a channel closed when the current session ends. If no session
// was ever started the returned channel is already closed.
func (p *IngestionPoller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}

	return p.done
}

// Snapshot returns the current session state and the last observed files.
func (p *IngestionPoller) Snapshot() PollerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	files := make([]domain.KnowledgeFile, len(p.files))
	copy(files, p.files)

	return PollerSnapshot{
		KnowledgeID: p.knowledgeID,
		Active:      p.active,
		Iterations:  p.iterations,
		Files:       files,
	}
}

func (p *IngestionPoller) run(ctx context.Context, generation uint64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return
		case <-ticker.C:
			p.tick(ctx, generation)
		}
	}
}

// tick launches one silent background fetch. When the previous tick's fetch
// has not resolved yet, the tick is skipped instead of overlapping it.
func (p *IngestionPoller) tick(ctx context.Context, generation uint64) {
	p.mu.Lock()

	if !p.active || p.generation != generation {
		p.mu.Unlock()
		return
	}

	if p.inFlight {
		p.mu.Unlock()
		log.Debug().Str("knowledge_id", p.knowledgeID).Msg("previous fetch still in flight, skipping tick")
		return
	}

	p.inFlight = true
	p.mu.Unlock()

	go func() {
		result, err := p.knowledge.ListFiles(ctx, domain.ListFilesParams{
			KnowledgeID: p.knowledgeID,
			Page:        1,
			PageSize:    p.pageSize,
		})

		p.resolve(generation, result, err)
	}()
}

func (p *IngestionPoller) resolve(generation uint64, result domain.ListFilesResult, err error) {
	p.mu.Lock()

	if !p.active || p.generation != generation {
		// The session ended while this fetch was in flight.
		p.mu.Unlock()
		return
	}

	if err != nil {
		// Per-tick failures are never surfaced; the next tick simply tries
		// again, but the iteration cap still applies.
		p.iterations++
		timedOut := p.iterations >= p.maxIterations
		// inFlight stays set when stopping so no tick sneaks in a fetch
		// before Stop lands.
		p.inFlight = timedOut
		p.mu.Unlock()

		log.Debug().
			Err(err).
			Str("knowledge_id", p.knowledgeID).
			Msg("ingestion status fetch failed")

		if timedOut {
			p.Stop()
		}
		return
	}

	p.files = result.Files

	if domain.AllTerminal(result.Files) {
		p.mu.Unlock()
		p.notifier.Successf("processing complete")
		p.Stop()
		return
	}

	p.iterations++
	timedOut := p.iterations >= p.maxIterations
	p.inFlight = timedOut
	p.mu.Unlock()

	if timedOut {
		log.Debug().
			Str("knowledge_id", p.knowledgeID).
			Int("iterations", p.maxIterations).
			Msg("ingestion polling gave up, files still processing")
		p.Stop()
	}
}
