package verify

import (
	"regexp"
	"strings"

	dErrors "bisaathi/pkg/domain-errors"
)

// codePattern is the canonical CM/L licence number shape: the CM/L prefix, a
// hyphen, and 5 to 10 digits.
var codePattern = regexp.MustCompile(`^CM/L-\d{5,10}$`)

// NormalizeCode canonicalizes a CM/L code as printed on labels: case-folded,
// whitespace stripped, and common separator variants (CML-, CM/L , CM/L_)
// collapsed to the canonical CM/L- prefix. It rejects anything that does not
// match the licence number shape after normalization.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.NewReplacer(" ", "", "_", "-", "—", "-").Replace(code)

	// Labels frequently omit the slash or the hyphen.
	if rest, ok := strings.CutPrefix(code, "CML-"); ok {
		code = "CM/L-" + rest
	} else if rest, ok := strings.CutPrefix(code, "CML"); ok {
		code = "CM/L-" + rest
	} else if rest, ok := strings.CutPrefix(code, "CM/L-"); ok {
		code = "CM/L-" + rest
	} else if rest, ok := strings.CutPrefix(code, "CM/L"); ok {
		code = "CM/L-" + rest
	}

	if !codePattern.MatchString(code) {
		return "", dErrors.New(dErrors.CodeValidation, "CM/L code must look like CM/L-1234567")
	}
	return code, nil
}
