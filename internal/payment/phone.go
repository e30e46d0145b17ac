package payment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone canonicalizes a Kenyan MSISDN to 254XXXXXXXXX. Accepted raw
// shapes: 254 + 9 digits, national 0 + 9 digits, or a bare 7XXXXXXXX
// subscriber number. Anything else fails validation locally so no push is
// ever triggered for a malformed number.
func NormalizePhone(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "254"):
		return digits, nil
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "254" + digits[1:], nil
	case len(digits) == 9 && strings.HasPrefix(digits, "7"):
		return "254" + digits, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidPhone, raw)
}
