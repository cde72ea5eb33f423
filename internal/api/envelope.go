package api

import (
	"encoding/json"

	"github.com/trilhalab/portalctl/internal/errors"
)

// Envelope is the uniform response shape of every portal API call:
// {success, data?, message?}. The client never interprets data; callers
// decode it into their own types with DecodeData.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// DecodeData unmarshals the envelope's data field into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return errors.New(errors.ErrCodeResponseDecode, "response envelope has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return errors.NewResponseDecodeError(err)
	}
	return nil
}
