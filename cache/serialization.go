package cache

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps structured payloads stored in a slot
type Envelope struct {
	Kind   string          `json:"kind"`
	Source string          `json:"source,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// Encode serializes v inside an envelope tagged with kind and source
func Encode[T any](kind, source string, v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	return json.Marshal(Envelope{
		Kind:   kind,
		Source: source,
		Data:   data,
	})
}

// Decode reverses Encode, rejecting envelopes of another kind
func Decode[T any](kind string, payload []byte) (T, error) {
	var v T

	env, err := Open(payload)
	if err != nil {
		return v, err
	}
	if env.Kind != kind {
		return v, fmt.Errorf("payload kind mismatch: cached=%s, expected=%s", env.Kind, kind)
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal %s payload: %w", kind, err)
	}
	return v, nil
}

// Open reads the envelope header without decoding the data
func Open(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("failed to unmarshal cached envelope: %w", err)
	}
	return env, nil
}
