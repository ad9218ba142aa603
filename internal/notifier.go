package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultToastDuration   = 5 * time.Second
	DefaultCaptionOverride = 5 * time.Second
)

// NotificationLedger persists delivered notifications across processes
type NotificationLedger interface {
	Record(key NotificationID, n Notification) error
	LastID() (NotificationID, error)
}

// Notifier turns status notifications into toasts, delivering each id once
type Notifier struct {
	Store           *Store
	Ledger          NotificationLedger
	ToastDuration   time.Duration
	CaptionOverride time.Duration

	afterFunc func(time.Duration, func()) *time.Timer
	now       func() time.Time
}

// NewNotifier creates a notifier. When ledger is non-nil the last delivered
// id is loaded from it so a restart does not repeat the last toast.
func NewNotifier(store *Store, ledger NotificationLedger) *Notifier {
	n := &Notifier{
		Store:           store,
		Ledger:          ledger,
		ToastDuration:   DefaultToastDuration,
		CaptionOverride: DefaultCaptionOverride,
		afterFunc:       time.AfterFunc,
		now:             time.Now,
	}

	if ledger != nil {
		last, err := ledger.LastID()
		if err != nil {
			LogWarn("Failed to read last notification id: %v", err)
		} else if last != "" {
			store.Update(func(v *ViewState) {
				v.LastNotificationID = last
			})
		}
	}
	return n
}

// NotificationKey returns the id used for deduplication. Notifications that
// arrive without an id are keyed by a hash of their content.
func NotificationKey(n Notification) NotificationID {
	if n.ID != "" {
		return n.ID
	}
	h := sha256.New()
	h.Write([]byte(n.Type))
	h.Write([]byte{0})
	h.Write([]byte(n.Message))
	return NotificationID("sha256:" + hex.EncodeToString(h.Sum(nil))[:16])
}

// Observe delivers the snapshot's notification if it has not been seen.
// It reports whether a toast was shown.
func (n *Notifier) Observe(snap *StatusSnapshot) bool {
	if snap == nil || snap.Notification == nil || snap.Notification.Message == "" {
		return false
	}
	note := *snap.Notification
	key := NotificationKey(note)

	toast := Toast{
		ID:        string(key),
		Message:   note.Message,
		Type:      note.Type,
		ExpiresAt: n.clock().Add(n.toastDuration()),
	}

	delivered := false
	overrode := false
	n.Store.Update(func(v *ViewState) {
		if v.LastNotificationID == key {
			return
		}
		delivered = true
		v.LastNotificationID = key
		v.Toasts = append(v.Toasts, toast)

		if note.Severe() && !v.Recording {
			v.CaptionOverride = note.Message
			v.Caption = note.Message
			overrode = true
		}
	})
	if !delivered {
		return false
	}

	LogInfo("Notification [%s]: %s", note.Type, note.Message)
	n.schedule(n.toastDuration(), func() {
		n.Store.Update(func(v *ViewState) {
			v.Toasts = removeToast(v.Toasts, toast.ID)
		})
	})

	if overrode {
		n.schedule(n.captionOverride(), func() {
			n.Store.Update(func(v *ViewState) {
				if v.Recording || v.Caption != note.Message {
					return
				}
				v.Caption = CaptionReady
				v.CaptionOverride = ""
			})
		})
	}

	if n.Ledger != nil {
		if err := n.Ledger.Record(key, note); err != nil {
			LogWarn("Failed to record notification: %v", err)
		}
	}
	return true
}

// Alert shows a failed user action as an error toast. Alerts are local and
// never reach the ledger.
func (n *Notifier) Alert(message string, err error) {
	if err != nil {
		LogError("%s: %v", message, err)
	}
	toast := Toast{
		ID:        "alert-" + uuid.NewString(),
		Message:   message,
		Type:      "error",
		ExpiresAt: n.clock().Add(n.toastDuration()),
	}
	n.Store.Update(func(v *ViewState) {
		v.Toasts = append(v.Toasts, toast)
	})
	n.schedule(n.toastDuration(), func() {
		n.DismissToast(toast.ID)
	})
}

// DismissToast removes a toast before it expires
func (n *Notifier) DismissToast(id string) {
	n.Store.Update(func(v *ViewState) {
		v.Toasts = removeToast(v.Toasts, id)
	})
}

func removeToast(toasts []Toast, id string) []Toast {
	out := toasts[:0]
	for _, t := range toasts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func (n *Notifier) schedule(d time.Duration, fn func()) {
	after := n.afterFunc
	if after == nil {
		after = time.AfterFunc
	}
	after(d, fn)
}

func (n *Notifier) clock() time.Time {
	if n.now == nil {
		return time.Now()
	}
	return n.now()
}

func (n *Notifier) toastDuration() time.Duration {
	if n.ToastDuration <= 0 {
		return DefaultToastDuration
	}
	return n.ToastDuration
}

func (n *Notifier) captionOverride() time.Duration {
	if n.CaptionOverride <= 0 {
		return DefaultCaptionOverride
	}
	return n.CaptionOverride
}
