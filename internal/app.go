package internal

import (
	"context"
	"errors"
	"sync"
)

// App wires the client components for one process
type App struct {
	Config *Config
	Client *Client
	Store  *Store
	Ledger *Ledger

	Notifier *Notifier
	Status   *StatusPoller
	History  *HistorySync
	Meetings *MeetingLoader
	Tags     *TagEditor
	Settings *SettingsEditor
	Devices  *DeviceController
	Uploader *Uploader
	Copier   *SummaryCopier
}

// NewApp builds every component from cfg. A ledger that cannot be opened is
// logged and skipped; notifications are then deduplicated in memory only.
func NewApp(cfg *Config, alerter Alerter) (*App, error) {
	client, err := NewClient(cfg.Server.URL, cfg.Server.RequestTimeout)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Client: client,
		Store:  NewStore(),
	}

	var ledger NotificationLedger
	if cfg.State.DBPath != "" {
		l, err := OpenLedger(cfg.State.DBPath)
		if err != nil {
			LogWarn("Notification ledger unavailable: %v", err)
		} else {
			a.Ledger = l
			ledger = l
		}
	}

	a.Notifier = NewNotifier(a.Store, ledger)
	a.Notifier.ToastDuration = cfg.Notifications.ToastDuration
	a.Notifier.CaptionOverride = cfg.Notifications.CaptionOverride

	a.Status = NewStatusPoller(client, a.Store, a.Notifier)
	a.Status.Interval = cfg.Poll.StatusInterval

	a.History = NewHistorySync(client, a.Store, alerter)
	a.History.Interval = cfg.Poll.HistoryInterval
	a.History.Debounce = cfg.Search.Debounce

	a.Meetings = NewMeetingLoader(client, a.Store)

	a.Tags = NewTagEditor(client, a.Store, alerter)
	a.Tags.OnChanged = func(ctx context.Context) {
		if err := a.History.Refresh(ctx); err != nil {
			LogWarn("History refresh after tag change failed: %v", err)
		}
	}

	a.Settings = NewSettingsEditor(client, alerter)
	a.Devices = NewDeviceController(client, a.Store, a.Status)

	a.Uploader = NewUploader(client, a.Store, alerter, a.History)
	a.Uploader.RefreshDelay = cfg.Upload.RefreshDelay

	a.Copier = NewSummaryCopier(a.Store, alerter)

	return a, nil
}

// UseAlerter routes every component's failure alerts to alerter
func (a *App) UseAlerter(alerter Alerter) {
	a.History.Alerter = alerter
	a.Tags.Alerter = alerter
	a.Settings.Alerter = alerter
	a.Uploader.Alerter = alerter
	a.Copier.Alerter = alerter
}

// Speakers creates a speaker editor seeded from summary
func (a *App) Speakers(alerter Alerter, summary string) *SpeakerEditor {
	return NewSpeakerEditor(a.Client, a.Meetings, alerter, summary)
}

// RunPollers runs the status and history pollers until ctx is done
func (a *App) RunPollers(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Status.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.History.Run(ctx)
	}()
	wg.Wait()
}

// Close releases the ledger
func (a *App) Close() error {
	var errs []error
	if a.Ledger != nil {
		errs = append(errs, a.Ledger.Close())
	}
	return errors.Join(errs...)
}
