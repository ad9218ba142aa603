package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	AlertUploadFailed = "Upload failed"
	AlertUploadError  = "Upload error"

	DefaultUploadRefreshDelay = time.Second
)

// Uploader sends local audio files to the server
type Uploader struct {
	Client       *Client
	Store        *Store
	Alerter      Alerter
	History      *HistorySync
	RefreshDelay time.Duration
}

// NewUploader creates an uploader
func NewUploader(client *Client, store *Store, alerter Alerter, history *HistorySync) *Uploader {
	return &Uploader{
		Client:       client,
		Store:        store,
		Alerter:      alerter,
		History:      history,
		RefreshDelay: DefaultUploadRefreshDelay,
	}
}

// Upload posts the file at path. A placeholder row is shown while the upload
// runs. After success the history is refreshed once the server has had time
// to register the file, and the placeholder stays until that refresh is done
// so the row never disappears before the real recording shows up. The
// returned channel closes when the placeholder is gone.
func (u *Uploader) Upload(ctx context.Context, path string) (<-chan struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	pending := PendingUpload{ID: "uploading-" + uuid.NewString(), Name: name, StartedAt: time.Now()}
	u.Store.Update(func(v *ViewState) {
		v.Pending = append(v.Pending, pending)
	})

	if err := u.Client.Upload(ctx, name, f); err != nil {
		u.removePending(pending.ID)
		msg := AlertUploadError
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			msg = AlertUploadFailed
		}
		return nil, raise(u.Alerter, msg, err, fmt.Errorf("failed to upload %s: %w", name, err))
	}
	LogInfo("Uploaded %s", name)

	done := make(chan struct{})
	if u.History == nil {
		u.removePending(pending.ID)
		close(done)
		return done, nil
	}

	delay := u.RefreshDelay
	if delay <= 0 {
		delay = DefaultUploadRefreshDelay
	}
	time.AfterFunc(delay, func() {
		defer close(done)
		if err := u.History.Refresh(context.WithoutCancel(ctx)); err != nil {
			LogWarn("History refresh after upload failed: %v", err)
		}
		u.removePending(pending.ID)
	})
	return done, nil
}

func (u *Uploader) removePending(id string) {
	u.Store.Update(func(v *ViewState) {
		kept := v.Pending[:0]
		for _, p := range v.Pending {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		v.Pending = kept
	})
}
