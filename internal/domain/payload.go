package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is the opaque document carried by a Record. The data layer only ever
// merges it key by key; nested values are replaced, never merged.
type Payload map[string]any

// maxExactInt is the largest integer magnitude a float64 holds exactly.
const maxExactInt = 1 << 53

// UnmarshalJSON decodes numbers as float64 like encoding/json does, except
// integers beyond float64 precision, which decode as int64.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	for k, v := range raw {
		raw[k] = normalizeNumber(v)
	}
	*p = raw
	return nil
}

func normalizeNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil && (n > maxExactInt || n < -maxExactInt) {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]any:
		for k, x := range t {
			t[k] = normalizeNumber(x)
		}
	case []any:
		for i, x := range t {
			t[i] = normalizeNumber(x)
		}
	}
	return v
}

// Clone returns a shallow copy of p. A nil payload clones to nil.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a new payload holding every key of p overlaid with every key of
// changes. Neither input is modified.
func (p Payload) Merge(changes Payload) Payload {
	out := make(Payload, len(p)+len(changes))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range changes {
		out[k] = v
	}
	return out
}

// String returns the payload value for key when it is a string, or "".
func (p Payload) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// ToPayload converts a typed view into a Payload via a JSON round trip.
func ToPayload(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return p, nil
}

// FromPayload decodes a Payload into the typed view pointed to by dst.
func FromPayload(p Payload, dst any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
