package internal

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"
)

const AlertSpeakersSaveFailed = "Failed to save speakers"

var (
	// speakersHeading matches a level-two heading mentioning Speakers; an
	// emoji or other prefix before the word is allowed.
	speakersHeading = regexp.MustCompile(`^##\s+.*\bSpeakers\b`)
	speakerBullet   = regexp.MustCompile(`^\s*[*-]\s+([^:]+?):\s*(.*?)\s*$`)
)

// ParseSpeakers extracts "Name: description" bullets from the summary's
// Speakers section. The section runs from its heading to the next heading.
// This depends on the markdown shape the server's summarizer produces.
func ParseSpeakers(markdown string) []Speaker {
	speakers := []Speaker{}
	inSection := false

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			if inSection {
				break
			}
			inSection = speakersHeading.MatchString(trimmed)
			continue
		}
		if !inSection {
			continue
		}

		m := speakerBullet.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.Trim(strings.TrimSpace(m[1]), "*_")
		if name == "" {
			continue
		}
		speakers = append(speakers, Speaker{Name: name, Description: strings.TrimSpace(m[2])})
	}
	return speakers
}

// ParseSpeakerArg parses a "Name: description" command-line argument
func ParseSpeakerArg(arg string) (Speaker, error) {
	name, desc, _ := strings.Cut(arg, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Speaker{}, fmt.Errorf("invalid speaker %q: expected \"Name: description\"", arg)
	}
	return Speaker{Name: name, Description: strings.TrimSpace(desc)}, nil
}

// SpeakerEditor holds the editable speaker rows of one meeting
type SpeakerEditor struct {
	Client  *Client
	Loader  *MeetingLoader
	Alerter Alerter

	Rows []Speaker
}

// NewSpeakerEditor creates an editor seeded from a summary
func NewSpeakerEditor(client *Client, loader *MeetingLoader, alerter Alerter, summary string) *SpeakerEditor {
	return &SpeakerEditor{
		Client:  client,
		Loader:  loader,
		Alerter: alerter,
		Rows:    ParseSpeakers(summary),
	}
}

// AddRow appends an empty row
func (e *SpeakerEditor) AddRow() {
	e.Rows = append(e.Rows, Speaker{})
}

// SetRow replaces row i
func (e *SpeakerEditor) SetRow(i int, s Speaker) error {
	if i < 0 || i >= len(e.Rows) {
		return fmt.Errorf("speaker row %d out of range", i)
	}
	e.Rows[i] = s
	return nil
}

// RemoveRow deletes row i
func (e *SpeakerEditor) RemoveRow(i int) error {
	if i < 0 || i >= len(e.Rows) {
		return fmt.Errorf("speaker row %d out of range", i)
	}
	e.Rows = append(e.Rows[:i], e.Rows[i+1:]...)
	return nil
}

// Speakers returns the rows that have a name
func (e *SpeakerEditor) Speakers() []Speaker {
	out := []Speaker{}
	for _, r := range e.Rows {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		out = append(out, Speaker{Name: name, Description: strings.TrimSpace(r.Description)})
	}
	return out
}

// Save writes the named rows for filename and reloads the meeting on success
func (e *SpeakerEditor) Save(ctx context.Context, filename string) error {
	speakers := e.Speakers()
	if err := e.Client.SaveSpeakers(ctx, filename, speakers); err != nil {
		return raise(e.Alerter, AlertSpeakersSaveFailed, err, fmt.Errorf("failed to save speakers for %s: %w", filename, err))
	}
	LogInfo("Saved %d speakers for %s", len(speakers), filename)

	if e.Loader != nil {
		detail, err := e.Loader.Load(ctx, filename)
		if err != nil {
			return fmt.Errorf("speakers saved but reload failed: %w", err)
		}
		e.Rows = ParseSpeakers(detail.SummaryText)
	}
	return nil
}
