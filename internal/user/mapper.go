package user

import "kkmall-be/internal/records"

func mapUser(rec records.Record) *User {
	if rec == nil {
		return nil
	}

	return &User{
		ID:          rec.ID(),
		Email:       rec.GetString("email"),
		Name:        rec.GetString("name"),
		Username:    rec.GetString("username"),
		Avatar:      rec.GetString("avatar"),
		Points:      rec.GetInt("points"),
		MemberLevel: rec.GetInt("memberLevel"),
		Verified:    rec.GetBool("verified"),
	}
}
