package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/verlyx/hub/internal/mycompany/domain"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type lengthRule struct {
	value *string
	max   int
}

func validateInput(in domain.CompanyInput, creating bool) error {
	if creating || in.Name != nil {
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return domain.ErrInvalidName
		}
	}
	if in.Type != nil && *in.Type != "" && !validType(*in.Type) {
		return domain.ErrInvalidType
	}
	for _, color := range []*string{in.PrimaryColor, in.SecondaryColor} {
		if color != nil && !hexColor.MatchString(*color) {
			return domain.ErrInvalidColor
		}
	}
	if in.Email != nil && *in.Email != "" {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return domain.ErrInvalidEmail
		}
	}
	rules := []lengthRule{
		{in.Name, 255},
		{in.TaxID, 100},
		{in.Industry, 100},
		{in.Website, 255},
		{in.Phone, 50},
		{in.Email, 255},
		{in.City, 100},
		{in.Country, 100},
	}
	for _, rule := range rules {
		if rule.value != nil && utf8.RuneCountInString(*rule.value) > rule.max {
			return domain.ErrInvalidLength
		}
	}
	return nil
}

func validType(t string) bool {
	for _, allowed := range domain.CompanyTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// updateFields maps the supplied inputs to column updates.
func updateFields(in domain.CompanyInput) map[string]any {
	fields := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	set("name", in.Name)
	set("type", in.Type)
	set("description", in.Description)
	set("logo_url", in.LogoURL)
	set("primary_color", in.PrimaryColor)
	set("secondary_color", in.SecondaryColor)
	set("tax_id", in.TaxID)
	set("industry", in.Industry)
	set("website", in.Website)
	set("phone", in.Phone)
	set("email", in.Email)
	set("address", in.Address)
	set("city", in.City)
	set("country", in.Country)
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	return fields
}
