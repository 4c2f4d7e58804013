package users

import "strings"

// ProfileInput is the payload of PUT /users/profile.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func (in ProfileInput) normalize() ProfileInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Avatar = strings.TrimSpace(in.Avatar)
	return in
}
