package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

func batchError(key string) *DomainError {
	label := key
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return domainError(http.StatusBadRequest, "VALIDATION_ERROR", label+" must be a non-empty array")
}

// normalizeBatch extracts the raw JSON array carried by a request body. The
// body may be the array itself, or an object with the array under key, or an
// object with a JSON-encoded string under key. Anything else is a
// validation error naming the key.
func normalizeBatch(body []byte, key string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, batchError(key)
	}
	if trimmed[0] == '[' {
		return json.RawMessage(trimmed), nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, batchError(key)
	}
	inner, ok := wrapper[key]
	if !ok {
		return nil, batchError(key)
	}
	inner = bytes.TrimSpace(inner)
	if len(inner) > 0 && inner[0] == '"' {
		var encoded string
		if err := json.Unmarshal(inner, &encoded); err != nil {
			return nil, batchError(key)
		}
		inner = bytes.TrimSpace([]byte(encoded))
	}
	if len(inner) == 0 || inner[0] != '[' {
		return nil, batchError(key)
	}
	return json.RawMessage(inner), nil
}

func decodeBatch[T any](body []byte, key string) ([]T, error) {
	raw, err := normalizeBatch(body, key)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, batchError(key)
	}
	if len(items) == 0 {
		return nil, batchError(key)
	}
	return items, nil
}

// ParseAnswerBatch normalizes a submission body into answer inputs.
func ParseAnswerBatch(body []byte) ([]AnswerInput, error) {
	return decodeBatch[AnswerInput](body, "responses")
}
