package internal

import (
	"context"
	"fmt"
	"strings"
)

const (
	AlertAddTagFailed        = "Failed to add tag"
	tagRemovalUnsupportedMsg = "Tag removal not yet supported by backend."
)

// TagEditor edits the open meeting's tags. Additions are shown before the
// server confirms them and rolled back if it refuses.
type TagEditor struct {
	Client  *Client
	Store   *Store
	Alerter Alerter

	// OnChanged runs after a successful write so the history list can refresh
	OnChanged func(ctx context.Context)
}

// NewTagEditor creates a tag editor
func NewTagEditor(client *Client, store *Store, alerter Alerter) *TagEditor {
	return &TagEditor{Client: client, Store: store, Alerter: alerter}
}

// Add attaches tag to the open meeting. It reports whether a request was sent.
func (e *TagEditor) Add(ctx context.Context, tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false, nil
	}

	var filename string
	e.Store.Update(func(v *ViewState) {
		if v.Open == nil || v.Open.Loading {
			return
		}
		for _, t := range v.Open.Tags {
			if t == tag {
				return
			}
		}
		filename = v.Open.Filename
		v.Open.Tags = append(v.Open.Tags, tag)
	})
	if filename == "" {
		return false, nil
	}

	if err := e.Client.AddTag(ctx, filename, tag); err != nil {
		e.Store.Update(func(v *ViewState) {
			if v.IsOpen(filename) {
				v.Open.Tags = removeTag(v.Open.Tags, tag)
			}
		})
		return true, raise(e.Alerter, AlertAddTagFailed, err, fmt.Errorf("failed to add tag %q to %s: %w", tag, filename, err))
	}

	LogInfo("Tagged %s with %q", filename, tag)
	if e.OnChanged != nil {
		e.OnChanged(ctx)
	}
	return true, nil
}

// Remove is not backed by any server endpoint and always fails
func (e *TagEditor) Remove(tag string) error {
	return raise(e.Alerter, tagRemovalUnsupportedMsg, nil, &UnsupportedError{Op: "remove tag", Reason: tagRemovalUnsupportedMsg})
}

// DedupeTags drops repeated tags, keeping the first occurrence of each
func DedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func removeTag(tags []string, tag string) []string {
	out := tags[:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
