package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent encodes ev as one newline-terminated record.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendJSON(nil, ev)
	}
	return appendText(nil, ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

func appendJSON(dst []byte, ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Attrs:    ev.Attrs,
	})
	if err != nil {
		data = fmt.Appendf(nil, `{"seq":%d,"kind":"error","name":%q}`, ev.Seq, err.Error())
	}
	dst = append(dst, data...)
	return append(dst, '\n')
}

// appendText writes
//
//	15:04:05.000000 #7 file   end    file:a.c: detail [a=2 z=1]
//
// Nested events are indented by two spaces.
func appendText(dst []byte, ev *Event) []byte {
	dst = ev.Time.AppendFormat(dst, "15:04:05.000000")
	dst = fmt.Appendf(dst, " #%d %-6s %-6s ", ev.Seq, ev.Scope, ev.Kind)
	if ev.ParentID != 0 {
		dst = append(dst, "  "...)
	}
	dst = append(dst, ev.Name...)
	if ev.Detail != "" {
		dst = append(dst, ": "...)
		dst = append(dst, ev.Detail...)
	}
	if len(ev.Attrs) > 0 {
		dst = append(dst, " ["...)
		for i, k := range slices.Sorted(maps.Keys(ev.Attrs)) {
			if i > 0 {
				dst = append(dst, ' ')
			}
			dst = append(dst, k...)
			dst = append(dst, '=')
			dst = append(dst, ev.Attrs[k]...)
		}
		dst = append(dst, ']')
	}
	return append(dst, '\n')
}
