package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const DefaultCountry = "India"

// ShippingAddress is stored as a JSON column on orders.
type ShippingAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country"`
}

// Normalize fills the default country.
func (a ShippingAddress) Normalize() ShippingAddress {
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return a
}

func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a.Normalize())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = ShippingAddress{Country: DefaultCountry}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}
}
