// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind classifies the outcome of a remote call.
type Kind int

const (
	// KindOK means an envelope was decoded. The remote status may still be an error.
	KindOK Kind = iota
	// KindRetryable covers transport errors and undecodable bodies. The client already waited before returning.
	KindRetryable
	// KindUnauthorized is an HTTP 401 or an envelope carrying status 401.
	KindUnauthorized
	// KindFatal is a request that could not be built or sent at all.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindRetryable:
		return "retryable"
	case KindUnauthorized:
		return "unauthorized"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// NoStatus is reported when the envelope carried no status field.
const NoStatus = -1

// Result is the tagged outcome of Client.Call.
type Result struct {
	Kind       Kind
	HTTPStatus int
	Status     int
	Message    string
	Data       json.RawMessage
	Err        error
}

type envelope struct {
	Status  *int            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Success is true for a decoded envelope whose status is 0 or 200.
func (r Result) Success() bool {
	return r.Kind == KindOK && (r.Status == 0 || r.Status == 200)
}

// DataIsEmptyObject reports whether data was exactly {}.
func (r Result) DataIsEmptyObject() bool {
	trimmed := bytes.TrimSpace(r.Data)
	if len(trimmed) < 2 || trimmed[0] != '{' {
		return false
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return false
	}

	return len(m) == 0
}

// Describe renders the result for log lines.
func (r Result) Describe() string {
	switch r.Kind {
	case KindOK:
		if r.Message != "" {
			return fmt.Sprintf("status %d: %s", r.Status, r.Message)
		}
		return fmt.Sprintf("status %d", r.Status)
	case KindUnauthorized:
		return "unauthorized"
	default:
		if r.Err != nil {
			return fmt.Sprintf("%s: %v", r.Kind, r.Err)
		}
		return r.Kind.String()
	}
}

// Decode unmarshals data into v.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 || string(bytes.TrimSpace(r.Data)) == "null" {
		return fmt.Errorf("response has no data")
	}

	return json.Unmarshal(r.Data, v)
}

// Number accepts a JSON number or a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unq
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = Number(f)

	return nil
}

func (n Number) Float() float64 { return float64(n) }

func (n Number) Int() int { return int(n) }

// Time reads the number as unix seconds.
func (n Number) Time() time.Time {
	sec := int64(n)
	nsec := int64((float64(n) - float64(sec)) * 1e9)

	return time.Unix(sec, nsec)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

// ParseTime reads the ISO-ish timestamps the API returns. Values without a zone are local time.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
