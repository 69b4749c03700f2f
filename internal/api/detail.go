package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DetailKind identifies which shape a backend failure detail had.
type DetailKind int

const (
	DetailNone DetailKind = iota
	DetailText
	DetailList
	DetailObject
)

func (k DetailKind) String() string {
	switch k {
	case DetailNone:
		return "none"
	case DetailText:
		return "text"
	case DetailList:
		return "list"
	case DetailObject:
		return "object"
	default:
		return fmt.Sprintf("DetailKind(%d)", int(k))
	}
}

// FailureDetail is the decoded "detail" field of an error response. Only the
// field matching Kind is populated.
type FailureDetail struct {
	Kind   DetailKind
	Text   string
	Items  []json.RawMessage
	Object json.RawMessage
}

// ParseDetail classifies a raw "detail" value. Scalars other than strings
// (numbers, booleans) are kept as text using their JSON literal.
func ParseDetail(raw json.RawMessage) FailureDetail {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return FailureDetail{Kind: DetailNone}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return FailureDetail{Kind: DetailText, Text: string(raw)}
		}
		return FailureDetail{Kind: DetailText, Text: s}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return FailureDetail{Kind: DetailText, Text: string(raw)}
		}
		return FailureDetail{Kind: DetailList, Items: items}
	case '{':
		return FailureDetail{Kind: DetailObject, Object: append(json.RawMessage(nil), raw...)}
	default:
		return FailureDetail{Kind: DetailText, Text: string(raw)}
	}
}

// Reason formats the detail for display. fallback is used for DetailNone.
func (d FailureDetail) Reason(fallback string) string {
	switch d.Kind {
	case DetailNone:
		return fallback
	case DetailText:
		return d.Text
	case DetailList:
		parts := make([]string, 0, len(d.Items))
		for _, item := range d.Items {
			parts = append(parts, listItemText(item))
		}
		return strings.Join(parts, ", ")
	case DetailObject:
		return compactJSON(d.Object)
	default:
		return fmt.Sprintf("unrecognized failure detail (%s)", d.Kind)
	}
}

// listItemText returns the item's "msg" field when it has one, otherwise the
// item's own string form.
func listItemText(item json.RawMessage) string {
	var withMsg struct {
		Msg *string `json:"msg"`
	}
	if err := json.Unmarshal(item, &withMsg); err == nil && withMsg.Msg != nil && *withMsg.Msg != "" {
		return *withMsg.Msg
	}

	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}
	return compactJSON(item)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
