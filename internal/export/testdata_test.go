package export

import "github.com/iksnae/meeting-client/internal"

const sampleSummary = `## 🗣️ Speakers
*   Alice: Product lead
*   Bob: Engineer

## 📝 Summary
Shipped the **release**.

## ✅ Action Items
- Bob: write release notes`

func sampleDetail() *internal.MeetingDetail {
	d := internal.CreateTestDetail("sync.wav", sampleSummary, []string{"release", "team", "release"})
	d.Title = "Release sync"
	d.CreatedAt = "2025-03-14T09:30:00.123456"
	d.Duration = 3725
	d.AudioURL = "http://127.0.0.1:8000/audio/sync.wav"
	return d
}
