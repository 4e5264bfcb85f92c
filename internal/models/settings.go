package models

// InstituteSettings is the singleton institute profile used for branding.
// Every field is optional; absent fields fall back to defaults one by one.
type InstituteSettings struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	Website    *string `json:"website,omitempty"`
	Logo       *string `json:"logo,omitempty"`
	CenterCode *string `json:"centerCode,omitempty"`
}

// InstituteProfile is InstituteSettings after defaults were applied.
type InstituteProfile struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Website    string `json:"website"`
	Logo       string `json:"logo"`
	LogoURL    string `json:"logoUrl,omitempty"`
	CenterCode string `json:"centerCode"`
}
