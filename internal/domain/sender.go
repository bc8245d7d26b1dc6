package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verification is the provider's "verified" field. Depending on the API
// revision it arrives as a plain boolean or as {"status": bool, "reason": ...}.
// Both shapes normalise to Verified.
type Verification struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

func (v *Verification) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Verification{}
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("verification flag: %w", err)
		}
		*v = Verification{Verified: b}
		return nil
	case '{':
		var obj struct {
			Status *bool   `json:"status"`
			Reason *string `json:"reason"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("verification object: %w", err)
		}
		*v = Verification{}
		if obj.Status != nil {
			v.Verified = *obj.Status
		}
		if obj.Reason != nil {
			v.Reason = *obj.Reason
		}
		return nil
	default:
		return fmt.Errorf("verification: unsupported shape %s", string(data))
	}
}

type VerifiedSender struct {
	ID        int64        `json:"id"`
	Nickname  string       `json:"nickname"`
	FromEmail string       `json:"from_email"`
	FromName  string       `json:"from_name"`
	Verified  Verification `json:"verified"`
	Locked    bool         `json:"locked"`
}

// SenderCheck is the result of looking the configured sender up at the provider.
type SenderCheck struct {
	IsVerified bool            `json:"is_verified"`
	SenderInfo *VerifiedSender `json:"sender_info"`
}
