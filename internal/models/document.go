package models

import (
	"encoding/json"
	"fmt"
)

// StructuredDocument is the parsed form of one Document AI result shard.
// Only the entity list is traversed for golden-column extraction; the page and
// layout data is carried opaquely so the raw payload stays lossless.
type StructuredDocument struct {
	Text     string            `json:"text,omitempty"`
	Entities []Entity          `json:"entities,omitempty"`
	Pages    []json.RawMessage `json:"pages,omitempty"`
}

// Entity is one labeled span extracted by the processor. The type vocabulary is
// open: it comes from the processor's training, not from this codebase, so
// consumers must tolerate labels they do not recognize.
type Entity struct {
	Type        string  `json:"type"`
	MentionText string  `json:"mentionText"`
	Confidence  float64 `json:"confidence"`
}

// ParseStructuredDocument deserializes a result shard. A shard that is not
// valid JSON is fatal for that artifact: no record can be produced from it.
func ParseStructuredDocument(data []byte) (*StructuredDocument, error) {
	var doc StructuredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse structured document: %w", err)
	}
	return &doc, nil
}
