package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ISO-8601 in UTC with millisecond precision, e.g. 2024-05-01T12:00:00.000Z
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var ErrMissingData = errors.New("tracking event has no data")

// TrackingEventDTO is the request body sent by the tracking client.
type TrackingEventDTO struct {
	Type json.RawMessage `json:"type"`
	Data json.RawMessage `json:"data"`
}

type TrackingEvent struct {
	// Type is the event type as text. Strings are unquoted, any other JSON
	// value is kept in its compacted form.
	Type string
	// Data is the compacted JSON text of the data field, as sent by the client.
	Data   json.RawMessage
	fields map[string]any
}

// ParseTrackingEvent decodes a request body into a TrackingEvent.
// Malformed JSON, a body that is not an object and a missing or null data
// field are all reported as errors.
func ParseTrackingEvent(body []byte) (TrackingEvent, error) {
	var dto TrackingEventDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return TrackingEvent{}, err
	}

	if len(dto.Data) == 0 || bytes.Equal(dto.Data, []byte("null")) {
		return TrackingEvent{}, ErrMissingData
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, dto.Data); err != nil {
		return TrackingEvent{}, fmt.Errorf("data could not be compacted: %w", err)
	}

	eventType, err := typeText(dto.Type)
	if err != nil {
		return TrackingEvent{}, err
	}

	event := TrackingEvent{
		Type: eventType,
		Data: compacted.Bytes(),
	}

	// Only objects carry named fields. Other values are still stored as-is.
	if compacted.Len() > 0 && compacted.Bytes()[0] == '{' {
		if err := json.Unmarshal(compacted.Bytes(), &event.fields); err != nil {
			return TrackingEvent{}, err
		}
	}

	return event, nil
}

func typeText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return "", fmt.Errorf("type could not be compacted: %w", err)
	}
	return compacted.String(), nil
}

// Field returns the string value of a data field, or "" when the field is
// absent or not a string.
func (e TrackingEvent) Field(key string) string {
	s, _ := e.fields[key].(string)
	return s
}

func (e TrackingEvent) SessionId() string { return e.Field("sessionId") }
func (e TrackingEvent) UserAgent() string { return e.Field("userAgent") }
func (e TrackingEvent) EventName() string { return e.Field("eventName") }
func (e TrackingEvent) Referrer() string  { return e.Field("referrer") }

// Url is the page location of the event. data.url wins over data.page.
func (e TrackingEvent) Url() string {
	if url := e.Field("url"); url != "" {
		return url
	}
	return e.Field("page")
}

// TrackingRecord is one row of the visitor tracking table.
type TrackingRecord struct {
	Type      *string `json:"type,omitempty"`
	Data      string  `json:"data"`
	SessionId *string `json:"session_id,omitempty"`
	Url       *string `json:"url,omitempty"`
	Timestamp string  `json:"timestamp"`
	IpAddress *string `json:"ip_address,omitempty"`
}

func NewTrackingRecord(event TrackingEvent, ipAddress string, at time.Time) TrackingRecord {
	return TrackingRecord{
		Type:      optional(event.Type),
		Data:      string(event.Data),
		SessionId: optional(event.SessionId()),
		Url:       optional(event.Url()),
		Timestamp: FormatTimestamp(at),
		IpAddress: optional(ipAddress),
	}
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
