package storage

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes v for storage.
func MarshalJSON(v any) ([]byte, error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return bs, nil
}

// UnmarshalJSON deserializes a stored value into v.
func UnmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return nil
}
