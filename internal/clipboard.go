package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

const (
	CopiedMessage      = "Copied!"
	AlertNothingToCopy = "No summary to copy."
	AlertCopyFailed    = "Failed to copy to clipboard. Please try again."
)

// ErrNothingToCopy is returned when no meeting with a summary is open
var ErrNothingToCopy = errors.New("no summary to copy")

// SummaryCopier puts meeting summaries on the system clipboard
type SummaryCopier struct {
	Store   *Store
	Alerter Alerter

	// WriteAll defaults to clipboard.WriteAll
	WriteAll func(text string) error
}

// NewSummaryCopier creates a copier for the open meeting in store
func NewSummaryCopier(store *Store, alerter Alerter) *SummaryCopier {
	return &SummaryCopier{Store: store, Alerter: alerter, WriteAll: clipboard.WriteAll}
}

// CopyOpen copies the open meeting's summary
func (c *SummaryCopier) CopyOpen() error {
	v := c.Store.Snapshot()
	if v.Open == nil || v.Open.Loading || v.Open.Detail == nil {
		return raise(c.Alerter, AlertNothingToCopy, nil, ErrNothingToCopy)
	}
	return c.Copy(v.Open.Detail.SummaryText)
}

// Copy writes text to the clipboard. A blank summary is not copied.
func (c *SummaryCopier) Copy(text string) error {
	if strings.TrimSpace(text) == "" {
		return raise(c.Alerter, AlertNothingToCopy, nil, ErrNothingToCopy)
	}

	write := c.WriteAll
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(text); err != nil {
		return raise(c.Alerter, AlertCopyFailed, err, fmt.Errorf("failed to copy summary: %w", err))
	}
	LogDebug("Copied %d bytes of summary", len(text))
	return nil
}
