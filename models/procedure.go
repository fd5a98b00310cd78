package models

// Query represents one retrieval request built from a user turn.
// It is ephemeral: created per turn, never persisted.
type Query struct {
	Text           string  `json:"prompt"`
	Threshold      float64 `json:"match_threshold"`
	Count          int     `json:"match_count"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
}

const (
	// DefaultThreshold is the minimum similarity a procedure must reach
	// to be considered relevant.
	DefaultThreshold = 0.5

	// DefaultRetrieveCount is the result cap for raw retrieval calls.
	DefaultRetrieveCount = 3

	// DefaultAskCount is the result cap for full answer synthesis calls.
	DefaultAskCount = 5
)

// Normalize fills in defaults for zero-valued fields.
func (q Query) Normalize(defaultCount int) Query {
	if q.Threshold <= 0 {
		q.Threshold = DefaultThreshold
	}
	if q.Count <= 0 {
		q.Count = defaultCount
	}
	return q
}

// Metadata is the open key-value mapping attached to a corpus record.
// Its shape is owned by the store; only a couple of well-known optional
// keys are ever read, and absence and wrong-type values are treated the
// same way.
type Metadata map[string]interface{}

// StringList returns the value under key as a list of strings, or nil
// when the key is absent, not a list, or the list holds non-strings.
func (m Metadata) StringList(key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// String returns the value under key as a string, or "" when absent or
// of another type.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// RetrievedProcedure is one corpus hit from a similarity search.
// Instances are immutable once produced by the retriever; the ID stays
// stable for the lifetime of the StructuredResponse that embeds them so
// the UI can re-select a procedure later.
type RetrievedProcedure struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Metadata      Metadata `json:"metadata,omitempty"`
	Similarity    *float64 `json:"similarity,omitempty"`
	ThematicID    *string  `json:"thematicId,omitempty"`
	ProcedureLink *string  `json:"procedureLink,omitempty"`
	ThematicLink  *string  `json:"thematicLink,omitempty"`
}
