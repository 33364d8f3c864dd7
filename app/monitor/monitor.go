package monitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
	"github.com/pancak3lullz/SECurityTr8Ker/app/metrics"
)

// Monitor drives one polling cycle: list candidates, skip already-seen
// filings, fetch and classify new ones under a concurrency cap, persist
// confirmed disclosures and hand them to the notification channels.
//
// RunCycle is not safe for concurrent invocation; the scheduler is its
// only caller.
type Monitor struct {
	source   FilingSource
	analyzer *filing.Analyzer
	store    DisclosureStore
	notifier NotificationService
	metrics  *metrics.Metrics

	maxConcurrent int64

	cyclesRun         atomic.Int64
	filingsProcessed  atomic.Int64
	disclosuresFound  atomic.Int64
	notificationsSent atomic.Int64

	mu        sync.Mutex
	lastCheck time.Time
}

// Stats is a snapshot of the monitor's counters.
type Stats struct {
	CyclesRun         int64     `json:"cycles_run"`
	FilingsProcessed  int64     `json:"filings_processed"`
	DisclosuresFound  int64     `json:"disclosures_found"`
	NotificationsSent int64     `json:"notifications_sent"`
	LastCheck         time.Time `json:"last_check"`
}

func New(c *cfg.Cfg, source FilingSource, analyzer *filing.Analyzer,
	store DisclosureStore, notifier NotificationService, m *metrics.Metrics) *Monitor {
	return &Monitor{
		source:        source,
		analyzer:      analyzer,
		store:         store,
		notifier:      notifier,
		metrics:       m,
		maxConcurrent: int64(c.MaxConcurrentRequests),
	}
}

// Stats returns a snapshot of the monitor's counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	lastCheck := m.lastCheck
	m.mu.Unlock()

	return Stats{
		CyclesRun:         m.cyclesRun.Load(),
		FilingsProcessed:  m.filingsProcessed.Load(),
		DisclosuresFound:  m.disclosuresFound.Load(),
		NotificationsSent: m.notificationsSent.Load(),
		LastCheck:         lastCheck,
	}
}

// RunCycle performs one polling cycle. It never returns an error: per-filing
// failures are contained so one bad document cannot abort the batch.
func (m *Monitor) RunCycle(ctx context.Context) {
	m.mu.Lock()
	m.lastCheck = time.Now().UTC()
	m.mu.Unlock()

	defer func() {
		m.cyclesRun.Add(1)
		if m.metrics != nil {
			m.metrics.CyclesTotal.Inc()
		}
	}()

	filings := m.source.FetchFilings(ctx)
	if len(filings) == 0 {
		slog.Info("No filings found in feed")
		return
	}

	newFilings := make([]filing.Filing, 0, len(filings))
	for _, f := range filings {
		if !m.store.HasSeen(f.FilingHREF) {
			newFilings = append(newFilings, f)
		}
	}

	slog.Info("Inspecting filings for cybersecurity disclosures",
		"total", len(filings), "new", len(newFilings))

	if len(newFilings) == 0 {
		return
	}

	m.filingsProcessed.Add(int64(len(newFilings)))
	if m.metrics != nil {
		m.metrics.FilingsProcessedTotal.Add(float64(len(newFilings)))
	}

	sem := semaphore.NewWeighted(m.maxConcurrent)
	var wg sync.WaitGroup

	for i := range newFilings {
		f := &newFilings[i]

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				slog.Debug("Cycle cancelled before filing could be processed", "url", f.FilingHREF)
				return
			}
			defer sem.Release(1)

			m.processFiling(ctx, f)
		}()
	}

	wg.Wait()
}

// processFiling runs one fetch+classify unit. Any failure, including a
// panic, marks the filing seen so it is not reprocessed every cycle.
func (m *Monitor) processFiling(ctx context.Context, f *filing.Filing) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing filing, marking seen", "url", f.FilingHREF, "panic", r)
			m.store.MarkSeen(f)
		}
	}()

	// Ticker resolution is best-effort; a miss never aborts the filing.
	if ticker, ok := m.source.TickerSymbol(ctx, f.CIK); ok {
		f.TickerSymbol = ticker
	}

	content, ok := m.source.DocumentContent(ctx, f.FilingHREF)
	if !ok {
		slog.Warn("Failed to fetch document, marking seen", "url", f.FilingHREF)
		m.store.MarkSeen(f)
		return
	}

	hasDisclosure, terms, contexts := m.analyzer.Analyze(f, content)
	if !hasDisclosure {
		m.store.MarkSeen(f)
		return
	}

	f.MatchingTerms = terms
	f.Contexts = contexts

	if !m.store.AddDisclosure(f) {
		return
	}

	m.disclosuresFound.Add(1)
	if m.metrics != nil {
		m.metrics.DisclosuresFoundTotal.Inc()
	}

	for channel, ok := range m.notifier.NotifyAll(f) {
		status := "failure"
		if ok {
			status = "success"
			m.notificationsSent.Add(1)
		}
		if m.metrics != nil {
			m.metrics.NotificationsSentTotal.WithLabelValues(channel, status).Inc()
		}
	}
}
