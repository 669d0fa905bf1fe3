package payment

import (
	"regexp"
	"strings"
)

// ProviderRules maps a mobile money method to the local number prefixes it
// accepts. The sets differ per provider and have drifted between app
// releases, so they are data here, overridable from config, never
// hard-coded in the validator.
type ProviderRules map[Method][]string

// DefaultProviderRules returns the prefix sets currently live in Rwanda:
// MTN issues 78/79 numbers, Airtel issues 72/73.
func DefaultProviderRules() ProviderRules {
	return ProviderRules{
		MethodMTNMoMo:     {"78", "79"},
		MethodAirtelMoney: {"72", "73"},
	}
}

// Merge overlays config-supplied prefix sets onto the defaults. Methods
// absent from the overlay keep their default rules.
func (r ProviderRules) Merge(overlay map[string][]string) ProviderRules {
	merged := make(ProviderRules, len(r))
	for m, prefixes := range r {
		merged[m] = prefixes
	}
	for name, prefixes := range overlay {
		if len(prefixes) == 0 {
			continue
		}
		merged[Method(name)] = prefixes
	}
	return merged
}

var nonDigits = regexp.MustCompile(`\D+`)

// NormalizePhoneNumber strips every non-digit character and drops a single
// leading zero from ten-digit local numbers, yielding the canonical
// nine-digit form when the input is well formed.
func NormalizePhoneNumber(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) == 10 && strings.HasPrefix(digits, "0") {
		return digits[1:]
	}
	return digits
}

// ValidPhoneNumber reports whether raw normalizes to a nine-digit number
// starting with one of the method's accepted prefixes. Pure function, no
// I/O.
func ValidPhoneNumber(rules ProviderRules, method Method, raw string) bool {
	prefixes, ok := rules[method]
	if !ok || len(prefixes) == 0 {
		return false
	}

	normalized := NormalizePhoneNumber(raw)
	if len(normalized) != 9 {
		return false
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
