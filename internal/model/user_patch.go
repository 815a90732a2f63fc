package model

import "strings"

// UserPatch is what a user may change on their own profile.
type UserPatch struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Avatar   *string `json:"avatar"`
}

// AdminUserPatch is what a superuser may change on any account.
type AdminUserPatch struct {
	FullName    *string `json:"full_name"`
	Phone       *string `json:"phone"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (p UserPatch) Apply(u *User) error {
	if p.FullName != nil {
		name := strings.TrimSpace(*p.FullName)
		if name == "" {
			return invalid("full_name must not be blank")
		}
		if err := checkLengths(lengthRule{"full_name", &name, 100}); err != nil {
			return err
		}
		u.FullName = name
	}
	if p.Phone != nil {
		if err := checkLengths(lengthRule{"phone", p.Phone, 20}); err != nil {
			return err
		}
		u.Phone = p.Phone
	}
	if p.Avatar != nil {
		if err := checkLengths(lengthRule{"avatar", p.Avatar, 255}); err != nil {
			return err
		}
		u.Avatar = p.Avatar
	}
	return nil
}

func (p AdminUserPatch) Apply(u *User) error {
	if err := (UserPatch{FullName: p.FullName, Phone: p.Phone}).Apply(u); err != nil {
		return err
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsSuperuser != nil {
		u.IsSuperuser = *p.IsSuperuser
	}
	return nil
}
