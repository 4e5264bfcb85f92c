package document

import "github.com/noah-isme/techskill-console/internal/models"

// Default institute profile used wherever settings are missing.
const (
	DefaultName       = "TechSkill Training Institute"
	DefaultAddress    = "123 Main Street, City, State - 000000"
	DefaultPhone      = "+91 00000 00000"
	DefaultEmail      = "info@techskill.example"
	DefaultWebsite    = "www.techskill.example"
	DefaultCenterCode = "C001"
)

// DefaultSettings returns the fallback institute profile.
func DefaultSettings() models.InstituteSettings {
	return models.InstituteSettings{
		Name:       strPtr(DefaultName),
		Address:    strPtr(DefaultAddress),
		Phone:      strPtr(DefaultPhone),
		Email:      strPtr(DefaultEmail),
		Website:    strPtr(DefaultWebsite),
		CenterCode: strPtr(DefaultCenterCode),
	}
}

// WithDefaults merges settings over defaults field by field. A nil
// settings value, a nil field or a blank field all fall back
// independently.
func WithDefaults(settings *models.InstituteSettings, defaults models.InstituteSettings) models.InstituteProfile {
	var s models.InstituteSettings
	if settings != nil {
		s = *settings
	}
	return models.InstituteProfile{
		Name:       pick(s.Name, defaults.Name),
		Address:    pick(s.Address, defaults.Address),
		Phone:      pick(s.Phone, defaults.Phone),
		Email:      pick(s.Email, defaults.Email),
		Website:    pick(s.Website, defaults.Website),
		Logo:       pick(s.Logo, defaults.Logo),
		CenterCode: pick(s.CenterCode, defaults.CenterCode),
	}
}

// HeaderFrom converts a resolved profile into a document header.
func HeaderFrom(profile models.InstituteProfile) Header {
	return Header{
		Name:       profile.Name,
		Address:    profile.Address,
		Phone:      profile.Phone,
		Email:      profile.Email,
		Website:    profile.Website,
		LogoURL:    profile.LogoURL,
		CenterCode: profile.CenterCode,
	}
}

func pick(value, fallback *string) string {
	if value != nil && *value != "" {
		return *value
	}
	if fallback != nil {
		return *fallback
	}
	return ""
}

func strPtr(s string) *string { return &s }
