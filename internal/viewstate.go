package internal

import (
	"sync"
	"time"
)

// Pulse is the recording indicator's visual response to input level
type Pulse struct {
	Scale   float64
	Opacity float64
}

// Toast is a transient on-screen message
type Toast struct {
	ID        string
	Message   string
	Type      string
	ExpiresAt time.Time
}

// PendingUpload is a placeholder history row shown while an upload is in flight
type PendingUpload struct {
	ID        string
	Name      string
	StartedAt time.Time
}

// OpenMeeting is the detail view of a single recording
type OpenMeeting struct {
	Filename string
	Detail   *MeetingDetail
	Tags     []string
	Loading  bool
}

// ViewState is everything the client renders
type ViewState struct {
	Devices        []Device
	SelectedDevice int
	DevicesError   string

	Recording bool
	StartedAt time.Time
	Elapsed   time.Duration
	Pulse     Pulse

	Caption         string
	CaptionOverride string
	Toasts          []Toast

	History     []Recording
	HistorySeq  uint64
	SearchQuery string
	Pending     []PendingUpload

	Open      *OpenMeeting
	LoadError string

	LastNotificationID NotificationID
}

// NewViewState returns the idle state shown before the first poll
func NewViewState() ViewState {
	return ViewState{
		SelectedDevice: -1,
		Caption:        CaptionReady,
		Pulse:          Pulse{Scale: 1},
	}
}

// Clone returns a deep copy that shares no slices with v
func (v ViewState) Clone() ViewState {
	out := v
	if v.Devices != nil {
		out.Devices = append([]Device(nil), v.Devices...)
	}
	if v.Toasts != nil {
		out.Toasts = append([]Toast(nil), v.Toasts...)
	}
	if v.History != nil {
		out.History = make([]Recording, len(v.History))
		for i, r := range v.History {
			out.History[i] = r.clone()
		}
	}
	if v.Pending != nil {
		out.Pending = append([]PendingUpload(nil), v.Pending...)
	}
	if v.Open != nil {
		open := *v.Open
		open.Detail = v.Open.Detail.clone()
		if v.Open.Tags != nil {
			open.Tags = append([]string(nil), v.Open.Tags...)
		}
		out.Open = &open
	}
	return out
}

// IsOpen reports whether the detail view shows filename
func (v ViewState) IsOpen(filename string) bool {
	return v.Open != nil && v.Open.Filename == filename
}

// Store holds the current ViewState and notifies subscribers on every update
type Store struct {
	mu        sync.Mutex
	state     ViewState
	listeners map[int]func(ViewState)
	nextID    int
}

// NewStore creates a store holding the idle state
func NewStore() *Store {
	return &Store{
		state:     NewViewState(),
		listeners: make(map[int]func(ViewState)),
	}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies fn to the state under the lock, then notifies subscribers
// with the resulting snapshot.
func (s *Store) Update(fn func(*ViewState)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.Clone()
	listeners := make([]func(ViewState), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Subscribe registers fn for every subsequent update and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(ViewState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
