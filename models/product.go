package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ProductSnapshot struct {
	Name   string `json:"name"`
	Price  Price  `json:"price"`
	OnSale bool   `json:"sale"`
}

// Price is the display form of a price. The server sends it either as a
// string ("$128.00") or as a bare number (19.99); numbers keep their literal text.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price: expected string or number, got %s", b)
	}
	*p = Price(n.String())
	return nil
}

func (p Price) String() string {
	return string(p)
}
