package node

import (
	"encoding/json"
	"fmt"
)

// SentinelMetadataKey marks an output as a completion sentinel. The flag
// survives JSON round-trips through the queue store.
const SentinelMetadataKey = "__execution_completed__"

// ResponseReadyMetadataKey marks an output as the final response of a
// request/response workflow walk
const ResponseReadyMetadataKey = "response_ready"

// Output is the payload passed between nodes. Data accretes across the
// chain; Metadata carries provenance (source node, operation, iteration).
type Output struct {
	ID       string                 `json:"id"`
	Data     map[string]interface{} `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NewOutput creates an empty output attributed to the given node
func NewOutput(id string) *Output {
	return &Output{
		ID:       id,
		Data:     make(map[string]interface{}),
		Metadata: make(map[string]interface{}),
	}
}

// NewSentinel creates a completion sentinel attributed to the given node
func NewSentinel(id string) *Output {
	out := NewOutput(id)
	out.Metadata[SentinelMetadataKey] = true
	return out
}

// IsSentinel reports whether this output is a completion sentinel
func (o *Output) IsSentinel() bool {
	if o == nil || o.Metadata == nil {
		return false
	}
	flag, ok := o.Metadata[SentinelMetadataKey].(bool)
	return ok && flag
}

// IsResponse reports whether this output carries the final response of a
// request/response walk
func (o *Output) IsResponse() bool {
	if o == nil || o.Metadata == nil {
		return false
	}
	flag, ok := o.Metadata[ResponseReadyMetadataKey].(bool)
	return ok && flag
}

// Clone returns a copy with fresh top-level maps. Nested values are
// shared; nodes merge new entries rather than mutating inherited ones.
func (o *Output) Clone() *Output {
	if o == nil {
		return nil
	}
	clone := &Output{
		ID:       o.ID,
		Data:     make(map[string]interface{}, len(o.Data)),
		Metadata: make(map[string]interface{}, len(o.Metadata)),
	}
	for k, v := range o.Data {
		clone.Data[k] = v
	}
	for k, v := range o.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// Encode serializes the output to JSON for queue transport
func (o *Output) Encode() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output %s: %w", o.ID, err)
	}
	return data, nil
}

// DecodeOutput deserializes an output from JSON queue transport
func DecodeOutput(data []byte) (*Output, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	if out.Data == nil {
		out.Data = make(map[string]interface{})
	}
	if out.Metadata == nil {
		out.Metadata = make(map[string]interface{})
	}
	return &out, nil
}

// UniqueOutputKey returns base if unused in the output's data map,
// otherwise base_2, base_3, ... so multiple instances of the same node
// type can merge into one data map without collision.
func UniqueOutputKey(o *Output, base string) string {
	if o == nil || o.Data == nil {
		return base
	}
	if _, taken := o.Data[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		key := fmt.Sprintf("%s_%d", base, i)
		if _, taken := o.Data[key]; !taken {
			return key
		}
	}
}
