package dto

// SettingsRequest updates the institute profile. Nil fields are left
// unchanged on the backend.
type SettingsRequest struct {
	Name       *string `json:"name,omitempty" form:"name" validate:"omitempty,max=200"`
	Address    *string `json:"address,omitempty" form:"address"`
	Phone      *string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=30"`
	Email      *string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Website    *string `json:"website,omitempty" form:"website"`
	CenterCode *string `json:"centerCode,omitempty" form:"centerCode" validate:"omitempty,alphanum,max=20"`
}
