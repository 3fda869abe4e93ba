package store

import (
	"encoding/json"
	"time"
)

// now returns the current UTC time formatted as an API timestamp.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// mustJSON marshals v, falling back to an empty JSON value on error. Only
// used for values built from already-decoded JSON, where marshaling cannot
// fail in practice.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
