package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"tshirtshop/internal/domain"
)

// Countries the shop ships to. Must stay in sync with the storefront's
// country select.
var supportedCountries = []string{"US", "CA", "GB"}

var postalPatterns = map[string]*regexp.Regexp{
	"US": regexp.MustCompile(`^\d{5}([\s-]?\d{4})?$`),
	"CA": regexp.MustCompile(`(?i)^[A-Z]\d[A-Z][\s-]?\d[A-Z]\d$`),
	"GB": regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}$`),
}

// Phone: digits, spaces, hyphens, parentheses, plus. At least 10 digits.
var phonePattern = regexp.MustCompile(`^[+\s\-()\d]{10,30}$`)

const phoneDigitsMin = 10

var maxLengths = map[string]int{
	"fullName":        200,
	"line1":           255,
	"line2":           255,
	"city":            100,
	"stateOrProvince": 100,
	"postalCode":      20,
	"phone":           30,
}

// FieldError pinpoints one invalid shipping-address field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AddressValidationError aggregates every invalid field so the storefront can
// annotate the whole form in one round trip.
type AddressValidationError struct {
	Fields []FieldError
}

func (e *AddressValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "invalid shipping address: " + e.Fields[0].Field
	}
	return fmt.Sprintf("invalid shipping address: %d fields", len(e.Fields))
}

// ValidateShippingAddress checks required fields, lengths, the supported
// country set, per-country postal code formats and the optional phone.
func ValidateShippingAddress(addr domain.ShippingAddress) []FieldError {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: "shippingAddress." + field, Message: message})
	}

	checkRequired := func(field, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			add(field, field+" is required")
			return ""
		}
		if len(value) > maxLengths[field] {
			add(field, fmt.Sprintf("%s must not exceed %d characters", field, maxLengths[field]))
		}
		if hasControlChars(value) {
			add(field, field+" contains invalid characters")
		}
		return value
	}

	checkRequired("fullName", addr.FullName)
	checkRequired("line1", addr.Line1)
	checkRequired("city", addr.City)
	checkRequired("stateOrProvince", addr.StateOrProvince)

	if addr.Line2 != nil {
		line2 := strings.TrimSpace(*addr.Line2)
		if len(line2) > maxLengths["line2"] {
			add("line2", fmt.Sprintf("line2 must not exceed %d characters", maxLengths["line2"]))
		}
		if hasControlChars(line2) {
			add("line2", "line2 contains invalid characters")
		}
	}

	country := strings.ToUpper(strings.TrimSpace(addr.Country))
	if country == "" {
		add("country", "country is required")
	} else if !countrySupported(country) {
		add("country", "country must be one of: "+strings.Join(supportedCountries, ", "))
	}

	postal := strings.TrimSpace(addr.PostalCode)
	if postal == "" {
		add("postalCode", "postalCode is required")
	} else {
		if len(postal) > maxLengths["postalCode"] {
			add("postalCode", fmt.Sprintf("postalCode must not exceed %d characters", maxLengths["postalCode"]))
		}
		if pattern, ok := postalPatterns[country]; ok && !pattern.MatchString(normalizePostal(postal)) {
			add("postalCode", "postalCode format invalid for "+country)
		}
	}

	if addr.Phone != nil {
		phone := strings.TrimSpace(*addr.Phone)
		if phone != "" {
			switch {
			case len(phone) > maxLengths["phone"]:
				add("phone", fmt.Sprintf("phone must not exceed %d characters", maxLengths["phone"]))
			case !phonePattern.MatchString(phone):
				add("phone", "phone format invalid")
			case digitCount(phone) < phoneDigitsMin:
				add("phone", fmt.Sprintf("phone must contain at least %d digits", phoneDigitsMin))
			}
		}
	}

	return errs
}

// normalizeAddress trims every field and upper-cases the country, matching
// what validation checked.
func normalizeAddress(addr domain.ShippingAddress) domain.ShippingAddress {
	out := domain.ShippingAddress{
		FullName:        strings.TrimSpace(addr.FullName),
		Line1:           strings.TrimSpace(addr.Line1),
		City:            strings.TrimSpace(addr.City),
		StateOrProvince: strings.TrimSpace(addr.StateOrProvince),
		PostalCode:      strings.TrimSpace(addr.PostalCode),
		Country:         strings.ToUpper(strings.TrimSpace(addr.Country)),
	}
	if addr.Line2 != nil {
		if v := strings.TrimSpace(*addr.Line2); v != "" {
			out.Line2 = &v
		}
	}
	if addr.Phone != nil {
		if v := strings.TrimSpace(*addr.Phone); v != "" {
			out.Phone = &v
		}
	}
	return out
}

func countrySupported(country string) bool {
	for _, c := range supportedCountries {
		if c == country {
			return true
		}
	}
	return false
}

func normalizePostal(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
