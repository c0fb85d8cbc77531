package models

import (
	"bytes"
	"encoding/json"
)

type Recipient struct {
	Email string `json:"email"`
}

// UnmarshalJSON accepts both {"email": "..."} and a bare string; the basic
// server lists recipients as plain strings.
func (r *Recipient) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.Email)
	}

	type plain Recipient
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Recipient(p)
	return nil
}

type RecipientRequest struct {
	Email string `json:"email"`
}

type RecipientsResponse struct {
	Recipients []Recipient `json:"recipients"`
}
