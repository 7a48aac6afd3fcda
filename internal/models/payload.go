// internal/models/payload.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payload is a raw external record as decoded from a CRM response or a
// webhook body. Field names and nesting vary across the CRM's API versions
// and between webhook and fetch payloads, so access goes through the
// ordered-candidate helpers below instead of direct key lookups.
type Payload map[string]interface{}

// ParsePayload decodes a raw JSON body into a Payload.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return p, nil
}

// String returns the first non-empty string value among the candidate keys.
func (p Payload) String(keys ...string) string {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// Bool returns the value of the first candidate key that holds a boolean.
// Absence of every candidate returns the default: a record is only
// deactivated or delisted on an explicit false, never on a missing field.
func (p Payload) Bool(def bool, keys ...string) bool {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			switch b := v.(type) {
			case bool:
				return b
			case string:
				switch strings.ToLower(b) {
				case "true", "active", "yes":
					return true
				case "false", "inactive", "no":
					return false
				}
			}
		}
	}
	return def
}

// Decimal returns the first candidate key that parses as a decimal amount.
func (p Payload) Decimal(keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		v, ok := p[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return decimal.NewFromFloat(n), true
		case string:
			if n == "" {
				continue
			}
			if d, err := decimal.NewFromString(n); err == nil {
				return d, true
			}
		case json.Number:
			if d, err := decimal.NewFromString(n.String()); err == nil {
				return d, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// Int returns the first candidate key that holds an integer value.
func (p Payload) Int(keys ...string) (int, bool) {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			switch n := v.(type) {
			case float64:
				return int(n), true
			case json.Number:
				if i, err := n.Int64(); err == nil {
					return int(i), true
				}
			}
		}
	}
	return 0, false
}

// Time returns the first candidate key that parses as an RFC 3339 or unix
// timestamp.
func (p Payload) Time(keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, ok := p[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if parsed, err := time.Parse(layout, t); err == nil {
					return parsed, true
				}
			}
		case float64:
			if t > 0 {
				return time.Unix(int64(t), 0).UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// Strings returns the first candidate key holding a list of strings.
func (p Payload) Strings(keys ...string) []string {
	for _, key := range keys {
		v, ok := p[key]
		if !ok {
			continue
		}
		switch list := v.(type) {
		case []interface{}:
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			// Some CRM versions send comma-separated tag strings.
			var out []string
			for _, part := range strings.Split(list, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// Objects returns the first candidate key holding a list of nested objects.
func (p Payload) Objects(keys ...string) []Payload {
	for _, key := range keys {
		list, ok := p[key].([]interface{})
		if !ok {
			continue
		}
		out := make([]Payload, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, Payload(m))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Object returns the first candidate key holding a nested object.
func (p Payload) Object(keys ...string) (Payload, bool) {
	for _, key := range keys {
		if m, ok := p[key].(map[string]interface{}); ok {
			return Payload(m), true
		}
	}
	return nil, false
}
