package dto

// SubmitMoodRequest is the payload for recording a mood. TS and
// TZOffsetMinutes are deliberately loose: client clocks and timezones
// are untrusted display hints, so non-numeric values are ignored rather
// than rejected. SessionID likewise degrades silently when unusable.
type SubmitMoodRequest struct {
	X               *int        `json:"x"`
	Y               *int        `json:"y"`
	Label           string      `json:"label"`
	TS              interface{} `json:"ts"`
	TZOffsetMinutes interface{} `json:"tz_offset_minutes"`
	SessionID       string      `json:"session_id"`
}
