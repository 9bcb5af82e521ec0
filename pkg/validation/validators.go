package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of date inputs (HTML <input type="date">).
const DateLayout = "2006-01-02"

// Regex patterns
var (
	// Indian mobile: optional +91, first digit 6-9, then 9 more digits
	phoneRegex = regexp.MustCompile(`^(?:\+91)?[6-9][0-9]{9}$`)

	// local@domain.tld with no whitespace and a single @
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterValidators registers the custom tags used by Rules.
// now backs the not_past tag.
func RegisterValidators(v *validator.Validate, now func() time.Time) {
	_ = v.RegisterValidation("full_name", FullName)
	_ = v.RegisterValidation("mobile_phone", MobilePhone)
	_ = v.RegisterValidation("contact_email", ContactEmail)
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("calendar_date", CalendarDate)
	_ = v.RegisterValidation("not_past", NotPast(now))
}

// FullName requires at least two characters after trimming.
func FullName(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= 2
}

// MobilePhone validates the normalized form of the number.
func MobilePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(NormalizePhone(fl.Field().String()))
}

func ContactEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// CalendarDate accepts YYYY-MM-DD dates that exist in the calendar.
func CalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// NotPast rejects dates strictly before today in the location of now().
// Unparseable values pass; calendar_date reports those.
func NotPast(now func() time.Time) validator.Func {
	return func(fl validator.FieldLevel) bool {
		current := now()
		d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(fl.Field().String()), current.Location())
		if err != nil {
			return true
		}
		y, m, day := current.Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, current.Location())
		return !d.Before(today)
	}
}

// NormalizePhone keeps digits and a single leading plus sign.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
