package address

import "kkmall-be/internal/records"

// Address is one shipping address of a user.
type Address struct {
	ID         string `json:"id"`
	UserID     string `json:"user"`
	Label      string `json:"label"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
	Detail     string `json:"address"`
	IsDefault  bool   `json:"is_default"`
}

// Params carries the writable fields of an address.
type Params struct {
	Label      string
	Recipient  string
	Phone      string
	PostalCode string
	Detail     string
	IsDefault  bool
}

func mapAddress(rec records.Record) Address {
	return Address{
		ID:         rec.ID(),
		UserID:     rec.GetString("user"),
		Label:      rec.GetString("label"),
		Recipient:  rec.GetString("recipient"),
		Phone:      rec.GetString("phone"),
		PostalCode: rec.GetString("postal_code"),
		Detail:     rec.GetString("address"),
		IsDefault:  rec.GetBool("is_default"),
	}
}

func (p Params) body() map[string]any {
	return map[string]any{
		"label":       p.Label,
		"recipient":   p.Recipient,
		"phone":       p.Phone,
		"postal_code": p.PostalCode,
		"address":     p.Detail,
		"is_default":  p.IsDefault,
	}
}
