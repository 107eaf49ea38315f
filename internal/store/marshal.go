package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/fprecon/internal/ir"
)

// marshalHypothesis converts a hypothesis to JSON TEXT, or NULL when absent.
func marshalHypothesis(h *ir.Hypothesis) (sql.NullString, error) {
	if h == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(h)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal hypothesis: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalHypothesis parses JSON TEXT to a hypothesis. NULL yields nil.
// Both key lists are non-nil so a stored empty hypothesis round-trips as
// {"undefinedKeys":[],"errorKeys":[]}.
func unmarshalHypothesis(data sql.NullString) (*ir.Hypothesis, error) {
	if !data.Valid {
		return nil, nil
	}
	var h ir.Hypothesis
	if err := json.Unmarshal([]byte(data.String), &h); err != nil {
		return nil, fmt.Errorf("unmarshal hypothesis: %w", err)
	}
	norm := ir.NewHypothesis(h.UndefinedKeys, h.ErrorKeys)
	return &norm, nil
}

// marshalComponents converts a component dictionary to JSON TEXT.
// Member order is the dictionary's own order, so reading it back yields an
// equal dictionary.
func marshalComponents(dict ir.Object) (string, error) {
	data, err := dict.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal components: %w", err)
	}
	return string(data), nil
}

// unmarshalComponents parses JSON TEXT to a component dictionary.
func unmarshalComponents(data string) (ir.Object, error) {
	obj, err := ir.ParseObject([]byte(data))
	if err != nil {
		return ir.Object{}, fmt.Errorf("unmarshal components: %w", err)
	}
	return obj, nil
}
