package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Known server setting keys
const (
	SettingMinRecordingDuration  = "min_recording_duration"
	SettingDeleteShortRecordings = "delete_short_recordings"
	SettingCompressRecordings    = "compress_recordings"
	SettingAutoDetection         = "auto_detection"
	SettingVADThreshold          = "vad_threshold"
	SettingSilenceDuration       = "silence_duration"

	AlertSettingsSaveFailed = "Failed to save settings"
)

// KnownSettings lists the keys the settings form edits, in display order
var KnownSettings = []string{
	SettingMinRecordingDuration,
	SettingDeleteShortRecordings,
	SettingCompressRecordings,
	SettingAutoDetection,
	SettingVADThreshold,
	SettingSilenceDuration,
}

// Settings is the server's flat settings map. Values travel as strings.
type Settings map[string]string

// UnmarshalJSON accepts string, boolean and numeric values
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Settings, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[k] = ""
		default:
			return fmt.Errorf("setting %q has unsupported value %v", k, v)
		}
	}
	*s = out
	return nil
}

// Bool reads a boolean setting; anything but "true" is false
func (s Settings) Bool(key string) bool {
	return strings.EqualFold(s[key], "true")
}

// SetBool stores a boolean as "true" or "false"
func (s Settings) SetBool(key string, v bool) {
	s[key] = strconv.FormatBool(v)
}

// Set stores a raw value
func (s Settings) Set(key, value string) {
	s[key] = value
}

// Keys returns the keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ParseAssignment splits a "key=value" argument
func ParseAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid setting %q: expected key=value", arg)
	}
	return key, strings.TrimSpace(value), nil
}

// SettingsEditor loads and saves server settings
type SettingsEditor struct {
	Client  *Client
	Alerter Alerter
}

// NewSettingsEditor creates a settings editor
func NewSettingsEditor(client *Client, alerter Alerter) *SettingsEditor {
	return &SettingsEditor{Client: client, Alerter: alerter}
}

// Load fetches the current settings
func (e *SettingsEditor) Load(ctx context.Context) (Settings, error) {
	s, err := e.Client.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Save writes s to the server. Values are sent as entered.
func (e *SettingsEditor) Save(ctx context.Context, s Settings) error {
	if err := e.Client.SaveSettings(ctx, s); err != nil {
		return raise(e.Alerter, AlertSettingsSaveFailed, err, fmt.Errorf("failed to save settings: %w", err))
	}
	LogInfo("Saved %d settings", len(s))
	return nil
}

// SettingsForm stages edits on top of the loaded settings until Save or Cancel
type SettingsForm struct {
	editor   *SettingsEditor
	original Settings
	staged   Settings
}

// OpenSettingsForm loads the current settings into a new form
func (e *SettingsEditor) OpenSettingsForm(ctx context.Context) (*SettingsForm, error) {
	s, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsForm{editor: e, original: s, staged: s.Clone()}, nil
}

// Set stages a value
func (f *SettingsForm) Set(key, value string) {
	f.staged.Set(key, value)
}

// Values returns the staged settings
func (f *SettingsForm) Values() Settings {
	return f.staged.Clone()
}

// Dirty reports whether any staged value differs from what was loaded
func (f *SettingsForm) Dirty() bool {
	if len(f.staged) != len(f.original) {
		return true
	}
	for k, v := range f.staged {
		if ov, ok := f.original[k]; !ok || ov != v {
			return true
		}
	}
	return false
}

// Save writes the staged settings. On failure the staged edits are kept.
func (f *SettingsForm) Save(ctx context.Context) error {
	if err := f.editor.Save(ctx, f.staged); err != nil {
		return err
	}
	f.original = f.staged.Clone()
	return nil
}

// Cancel discards staged edits
func (f *SettingsForm) Cancel() {
	f.staged = f.original.Clone()
}
