package sysreptor

import (
	"encoding/base64"
	"time"
)

// MessageLevel is the severity of a render diagnostic message.
type MessageLevel string

// Message severities.
const (
	MessageLevelError   MessageLevel = "error"
	MessageLevelWarning MessageLevel = "warning"
	MessageLevelInfo    MessageLevel = "info"
	MessageLevelDebug   MessageLevel = "debug"
)

// LocationType classifies what a message location points at.
type LocationType string

// Message location types.
const (
	LocationTypeDesign  LocationType = "design"
	LocationTypeProject LocationType = "project"
	LocationTypeSection LocationType = "section"
	LocationTypeFinding LocationType = "finding"
	LocationTypeOther   LocationType = "other"
)

// MessageLocation points a diagnostic message at its source.
type MessageLocation struct {
	Type LocationType `json:"type"`
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Path string       `json:"path,omitempty"`
}

// Message is one render diagnostic.
type Message struct {
	Level    MessageLevel     `json:"level"`
	Message  string           `json:"message"`
	Details  string           `json:"details,omitempty"`
	Location *MessageLocation `json:"location,omitempty"`
}

// RenderStageResult accumulates the outcome of a render call chain: output
// bytes, ordered diagnostic messages, per-stage wall-clock timings, and a
// free-form auxiliary bag. One result is created per render call and never
// shared across concurrent calls.
type RenderStageResult struct {
	Output   []byte
	Messages []Message
	Timings  map[string]float64
	Other    map[string]any
}

// NewRenderStageResult creates an empty result.
func NewRenderStageResult() *RenderStageResult {
	return &RenderStageResult{
		Timings: map[string]float64{},
		Other:   map[string]any{},
	}
}

// AddTiming starts a scoped measurement of the named stage and returns the
// stop function. Use with defer so the duration is recorded even when the
// enclosed work fails:
//
//	defer res.AddTiming("collect_data")()
//
// Durations accumulate when a stage name is recorded more than once.
func (r *RenderStageResult) AddTiming(name string) func() {
	start := time.Now()
	return func() {
		r.Timings[name] += time.Since(start).Seconds()
	}
}

// Merge combines another result into this one: messages are concatenated in
// order, timings and aux data are overwritten by key (other wins), and the
// output is replaced when the other result carries one.
func (r *RenderStageResult) Merge(other *RenderStageResult) {
	if other == nil {
		return
	}
	r.Messages = append(r.Messages, other.Messages...)
	for k, v := range other.Timings {
		r.Timings[k] = v
	}
	for k, v := range other.Other {
		r.Other[k] = v
	}
	if other.Output != nil {
		r.Output = other.Output
	}
}

// HasError reports whether any accumulated message is error level.
func (r *RenderStageResult) HasError() bool {
	for _, m := range r.Messages {
		if m.Level == MessageLevelError {
			return true
		}
	}
	return false
}

// ToMap produces a transport-safe representation: output as base64, messages
// as plain maps.
func (r *RenderStageResult) ToMap() map[string]any {
	var output any
	if r.Output != nil {
		output = base64.StdEncoding.EncodeToString(r.Output)
	}
	messages := make([]any, len(r.Messages))
	for i, m := range r.Messages {
		msg := map[string]any{
			"level":   string(m.Level),
			"message": m.Message,
		}
		if m.Details != "" {
			msg["details"] = m.Details
		}
		if m.Location != nil {
			loc := map[string]any{
				"type": string(m.Location.Type),
				"id":   m.Location.ID,
				"name": m.Location.Name,
			}
			if m.Location.Path != "" {
				loc["path"] = m.Location.Path
			}
			msg["location"] = loc
		}
		messages[i] = msg
	}
	timings := make(map[string]any, len(r.Timings))
	for k, v := range r.Timings {
		timings[k] = v
	}
	return map[string]any{
		"output":   output,
		"messages": messages,
		"timings":  timings,
		"other":    r.Other,
	}
}
