package extract

import (
	"strconv"
	"strings"
)

// DefaultFallbackPrefix names parameters when neither a property nor a resource name is usable.
const DefaultFallbackPrefix = "Parameter"

// NameRequest holds the inputs for GenerateParameterName.
type NameRequest struct {
	PropertyName   string
	ResourceName   string
	ExistingNames  map[string]struct{}
	FallbackPrefix string
}

// GenerateParameterName builds a readable parameter name that is not in
// req.ExistingNames. Comparison is case-sensitive.
func GenerateParameterName(req NameRequest) string {
	base := baseName(req)
	existing := req.ExistingNames

	if _, taken := existing[base]; !taken {
		if !hasNumberedVariant(base, existing) {
			return base
		}
		return nextFree(base, 1, existing)
	}

	if stem, n, ok := splitTrailingNumber(base); ok {
		return nextFree(stem, n+1, existing)
	}
	return nextFree(base, 2, existing)
}

func baseName(req NameRequest) string {
	property := sanitizeName(req.PropertyName)
	resource := sanitizeName(req.ResourceName)

	switch {
	case resource != "" && property != "":
		return resource + property
	case property != "":
		return property + "Parameter"
	case resource != "":
		return resource + "Parameter1"
	}

	prefix := sanitizeName(req.FallbackPrefix)
	if prefix == "" {
		prefix = DefaultFallbackPrefix
	}
	return prefix + "1"
}

// sanitizeName drops everything outside [A-Za-z0-9] and joins the remaining
// words with their first letter capitalized: "instance-type" → "InstanceType".
func sanitizeName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return !isASCIIAlnum(r) })
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// hasNumberedVariant reports whether any existing name is base followed by digits.
func hasNumberedVariant(base string, existing map[string]struct{}) bool {
	for name := range existing {
		suffix, ok := strings.CutPrefix(name, base)
		if ok && suffix != "" && isDigits(suffix) {
			return true
		}
	}
	return false
}

// splitTrailingNumber splits "Foo3" into "Foo" and 3.
func splitTrailingNumber(s string) (string, int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) || i == 0 {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}

func nextFree(stem string, start int, existing map[string]struct{}) string {
	for i := start; ; i++ {
		candidate := stem + strconv.Itoa(i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
