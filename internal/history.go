package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
)

const (
	SentinelShortTitle    = "Short Recording"
	SentinelShortSummary  = "Recording too short to summarize."
	PlaceholderProcessing = "Processing..."

	shortSummaryPrefix = "Recording too short"

	DefaultHistoryInterval = 5 * time.Second
	DefaultSearchDebounce  = 300 * time.Millisecond

	ConfirmClearAll = "Are you sure you want to delete all recordings?"
	ConfirmDelete   = "Are you sure you want to delete this recording?"

	AlertDeleteFailed = "Failed to delete recording"
	AlertClearFailed  = "Failed to clear history"
)

// RowStatus is the processing state shown next to a history row
type RowStatus int

const (
	StatusProcessing RowStatus = iota
	StatusProcessed
	StatusTooShort
)

func (s RowStatus) String() string {
	switch s {
	case StatusTooShort:
		return "too short"
	case StatusProcessed:
		return "processed"
	default:
		return "processing"
	}
}

// DeriveRowStatus classifies a recording from its title and summary
func DeriveRowStatus(rec Recording) RowStatus {
	summary := strings.TrimSpace(rec.SummaryText)

	if rec.Title == SentinelShortTitle || summary == SentinelShortSummary || strings.HasPrefix(summary, shortSummaryPrefix) {
		return StatusTooShort
	}
	if summary != "" && summary != PlaceholderProcessing && !LooksLikeJSON(summary) {
		return StatusProcessed
	}
	return StatusProcessing
}

// LooksLikeJSON reports whether a summary is a raw JSON object, bare or fenced
func LooksLikeJSON(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "```json")
}

// FormatCreatedAt drops fractional seconds from a server timestamp
func FormatCreatedAt(s string) string {
	if strings.ContainsAny(s, "T ") {
		if i := strings.Index(s, "."); i >= 0 {
			return s[:i]
		}
	}
	return s
}

// HistorySync keeps the store's history list in step with the server
type HistorySync struct {
	Client   *Client
	Store    *Store
	Alerter  Alerter
	Interval time.Duration
	Debounce time.Duration

	// SearchDone is called after each debounced search completes
	SearchDone func(query string, results []Recording, err error)

	seq      atomic.Uint64
	initOnce sync.Once
	debounce func(f func())
}

// NewHistorySync creates a synchronizer with the default intervals
func NewHistorySync(client *Client, store *Store, alerter Alerter) *HistorySync {
	return &HistorySync{
		Client:   client,
		Store:    store,
		Alerter:  alerter,
		Interval: DefaultHistoryInterval,
		Debounce: DefaultSearchDebounce,
	}
}

func (h *HistorySync) debouncer() func(f func()) {
	h.initOnce.Do(func() {
		d := h.Debounce
		if d <= 0 {
			d = DefaultSearchDebounce
		}
		h.debounce = debounce.New(d)
	})
	return h.debounce
}

// Run refreshes immediately and then on every tick until ctx is done
func (h *HistorySync) Run(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = DefaultHistoryInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := h.Refresh(ctx); err != nil && ctx.Err() == nil {
			LogWarn("History refresh failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh replaces the history list with GET /history. It is skipped while a
// search query is active.
func (h *HistorySync) Refresh(ctx context.Context) error {
	if strings.TrimSpace(h.Store.Snapshot().SearchQuery) != "" {
		return nil
	}

	seq := h.seq.Add(1)
	recs, err := h.Client.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	h.apply(seq, recs)
	return nil
}

// apply stores recs unless a later fetch has already been applied
func (h *HistorySync) apply(seq uint64, recs []Recording) bool {
	applied := false
	h.Store.Update(func(v *ViewState) {
		if seq <= v.HistorySeq {
			return
		}
		v.HistorySeq = seq
		v.History = recs
		applied = true
	})
	if !applied {
		LogDebug("Dropped stale history response #%d", seq)
	}
	return applied
}

// Search updates the query. A blank query cancels any pending search and
// refreshes the full list; otherwise GET /search fires once the query has
// been stable for the debounce window.
func (h *HistorySync) Search(ctx context.Context, query string) error {
	h.Store.Update(func(v *ViewState) {
		v.SearchQuery = query
	})

	if strings.TrimSpace(query) == "" {
		h.debouncer()(func() {})
		return h.Refresh(ctx)
	}

	h.debouncer()(func() {
		results, err := h.runSearch(ctx, query)
		if err != nil {
			LogWarn("Search failed: %v", err)
		}
		if h.SearchDone != nil {
			h.SearchDone(query, results, err)
		}
	})
	return nil
}

func (h *HistorySync) runSearch(ctx context.Context, query string) ([]Recording, error) {
	seq := h.seq.Add(1)
	results, err := h.Client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}
	h.apply(seq, results)
	return results, nil
}

// Delete removes one recording after confirmation. It reports whether the
// deletion went ahead.
func (h *HistorySync) Delete(ctx context.Context, filename string, confirm Confirmer) (bool, error) {
	if confirm != nil && !confirm.Confirm(ConfirmDelete) {
		return false, nil
	}

	if err := h.Client.DeleteRecording(ctx, filename); err != nil {
		return false, raise(h.Alerter, AlertDeleteFailed, err, fmt.Errorf("failed to delete %s: %w", filename, err))
	}

	h.Store.Update(func(v *ViewState) {
		kept := v.History[:0]
		for _, r := range v.History {
			if r.Filename != filename {
				kept = append(kept, r)
			}
		}
		v.History = kept
		if v.IsOpen(filename) {
			v.Open = nil
			v.LoadError = ""
		}
	})
	LogInfo("Deleted recording %s", filename)
	return true, nil
}

// ClearAll deletes every recording after confirmation, closes the detail
// view and refreshes the list.
func (h *HistorySync) ClearAll(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm != nil && !confirm.Confirm(ConfirmClearAll) {
		return false, nil
	}

	if err := h.Client.ClearHistory(ctx); err != nil {
		return false, raise(h.Alerter, AlertClearFailed, err, fmt.Errorf("failed to clear history: %w", err))
	}

	h.Store.Update(func(v *ViewState) {
		v.History = nil
		v.Open = nil
		v.LoadError = ""
	})
	LogInfo("Cleared history")

	if err := h.Refresh(ctx); err != nil {
		LogWarn("History refresh after clear failed: %v", err)
	}
	return true, nil
}
