package backup

import "strings"

// persianDigits maps Persian (and Arabic-Indic) digits to ASCII.
var persianDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// NormalizePhone converts a user-supplied phone number to the local
// 09x form: Persian digits become ASCII, separators are stripped, and
// the +98 / 0098 / 98 country prefixes collapse to a leading 0.
// Anything that does not look like a phone number is returned cleaned
// but otherwise untouched.
func NormalizePhone(raw string) string {
	s := persianDigits.Replace(strings.TrimSpace(raw))
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, s)

	switch {
	case strings.HasPrefix(s, "+98"):
		s = "0" + s[3:]
	case strings.HasPrefix(s, "0098"):
		s = "0" + s[4:]
	case strings.HasPrefix(s, "98") && len(s) == 12:
		s = "0" + s[2:]
	case strings.HasPrefix(s, "9") && len(s) == 10:
		s = "0" + s
	}
	return s
}
