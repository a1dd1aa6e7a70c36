package app

import (
	"regexp"
	"strings"
)

// Bodies already carrying a sign-off are left alone.
var signOffPattern = regexp.MustCompile(`(?i)(best regards,|sincerely,|regards,|thank you,)`)

// appendSignatureIfMissing adds the manager's signature block to an email
// body unless the body already signs off.
func appendSignatureIfMissing(body, name, titleLine string) string {
	if signOffPattern.MatchString(body) {
		return body
	}
	signature := "Best regards,\n" + name + "\n" + titleLine
	trimmed := strings.TrimRight(body, " \t\n")
	if trimmed == "" {
		return signature
	}
	return trimmed + "\n\n" + signature
}
