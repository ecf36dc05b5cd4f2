package convert

import (
	"regexp"
	"strings"
)

var doiRegex = regexp.MustCompile(`^10\.\d{4,}/\S+$`)

// doiPrefixes are stripped from raw DOI strings, in this order.
var doiPrefixes = []string{
	"doi:",
	"http://",
	"https://",
	"dx.doi.org/",
	"doi.org/",
}

// cleanDOI returns a lowercase DOI without resolver prefix or the empty
// string, if the value cannot be a valid DOI.
func cleanDOI(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || strings.ContainsAny(raw, " –¬") {
		return ""
	}
	for _, p := range doiPrefixes {
		raw = strings.TrimPrefix(raw, p)
	}
	// 10.1037//0002-9432.72.1.50 is a known typo
	if strings.HasPrefix(raw, "10.1037//") {
		raw = "10.1037/" + raw[9:]
	}
	if !doiRegex.MatchString(raw) || !isASCII(raw) {
		return ""
	}
	return raw
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
