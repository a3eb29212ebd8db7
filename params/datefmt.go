package params

import (
	"regexp"
	"strconv"
	"strings"
)

// dateExprPattern matches a format token (letters and hyphens) followed by a
// signed day offset, e.g. "yyyy-MM-dd-1" or "yyyyMMdd+7".
var dateExprPattern = regexp.MustCompile(`^([a-zA-Z-]+)([+-])(\d+)$`)

// layoutReplacer maps the custom date-format tokens onto Go reference-time
// layout fragments. Token case distinguishes month (MM) from minute (mm).
var layoutReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// DateExpr is a parsed date-offset expression.
type DateExpr struct {
	// Layout is the Go time layout translated from the custom format token.
	Layout string
	// Days is the signed day offset.
	Days int
}

// ParseDateExpr parses expressions of the form <formatToken><+|-><days>.
// Returns ok=false when expr does not match the pattern.
func ParseDateExpr(expr string) (DateExpr, bool) {
	m := dateExprPattern.FindStringSubmatch(expr)
	if m == nil {
		return DateExpr{}, false
	}
	days, err := strconv.Atoi(m[3])
	if err != nil {
		return DateExpr{}, false
	}
	if m[2] == "-" {
		days = -days
	}
	return DateExpr{Layout: ConvertLayout(m[1]), Days: days}, true
}

// ConvertLayout translates a custom format token (yyyy-MM-dd style) into a
// Go time layout. Unknown fragments pass through unchanged.
func ConvertLayout(format string) string {
	return layoutReplacer.Replace(format)
}
