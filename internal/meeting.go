package internal

import (
	"context"
	"fmt"
)

// MeetingLoader opens recordings in the detail view
type MeetingLoader struct {
	Client *Client
	Store  *Store
}

// NewMeetingLoader creates a loader
func NewMeetingLoader(client *Client, store *Store) *MeetingLoader {
	return &MeetingLoader{Client: client, Store: store}
}

// Load fetches filename's detail and opens it. If another meeting was opened
// while the request was in flight the response is discarded.
func (l *MeetingLoader) Load(ctx context.Context, filename string) (*MeetingDetail, error) {
	l.Store.Update(func(v *ViewState) {
		v.Open = &OpenMeeting{Filename: filename, Loading: true}
		v.LoadError = ""
	})

	detail, err := l.Client.Meeting(ctx, filename)
	if err != nil {
		l.Store.Update(func(v *ViewState) {
			if v.IsOpen(filename) {
				v.Open.Loading = false
				v.LoadError = LoadErrorMessage
			}
		})
		return nil, fmt.Errorf("failed to load meeting %s: %w", filename, err)
	}

	NormalizeSummary(detail)
	detail.Tags = DedupeTags(detail.Tags)
	detail.AudioURL = l.Client.AudioURL(filename)

	stale := false
	l.Store.Update(func(v *ViewState) {
		if !v.IsOpen(filename) {
			stale = true
			return
		}
		v.Open = &OpenMeeting{
			Filename: filename,
			Detail:   detail.clone(),
			Tags:     append([]string{}, detail.Tags...),
		}
	})
	if stale {
		LogDebug("Discarded detail for %s; view moved on", filename)
	}
	return detail, nil
}

// Close clears the detail view
func (l *MeetingLoader) Close() {
	l.Store.Update(func(v *ViewState) {
		v.Open = nil
		v.LoadError = ""
	})
}
