package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Seeds struct {
	Server string `json:"server"` // revealed text; do NOT hex-decode
	Client string `json:"client"`
}

// Validate reports ErrMissingSeed when either seed is blank.
func (s Seeds) Validate() error {
	if s.Server == "" {
		return fmt.Errorf("%w: server seed is required", ErrMissingSeed)
	}
	if s.Client == "" {
		return fmt.Errorf("%w: client seed is required", ErrMissingSeed)
	}
	return nil
}

// Nonce is the round counter as it appears in the HMAC message. It is kept
// as text so that "1" and 1 produce the same message.
type Nonce string

// NonceFromUint renders a numeric nonce the way the message expects it.
func NonceFromUint(n uint64) Nonce {
	return Nonce(strconv.FormatUint(n, 10))
}

func (n Nonce) String() string {
	return string(n)
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (n *Nonce) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Nonce(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("%w: nonce must be a string or a number", ErrInvalidInput)
	}
	if i, err := num.Int64(); err == nil {
		*n = Nonce(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := num.Float64()
	if err != nil {
		return fmt.Errorf("%w: nonce %s is not a number", ErrInvalidInput, num)
	}
	*n = Nonce(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// MarshalJSON always emits the nonce as a string.
func (n Nonce) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}
