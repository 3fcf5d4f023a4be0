package extract

import (
	"regexp"
	"strings"
)

// Field names a value pulled out of a message.
type Field string

const (
	FieldCharterID  Field = "charter_id"
	FieldName       Field = "name"
	FieldPhone      Field = "phone"
	FieldPickUpDate Field = "pick_up_date"
	FieldReturnDate Field = "return_date"
)

// Rule extracts one field. Pattern must have exactly one capture group holding
// the value. Normalize, when set, runs on the captured value; a value that is
// empty after normalization counts as a miss.
type Rule struct {
	Field     Field
	Pattern   *regexp.Regexp
	Required  bool
	Normalize func(string) string
}

// Labels may be wrapped in emphasis markup (*bold*, _italic_, ~strike~) and the
// spacing and punctuation between a label and its value drifts between senders.
// Searches are unanchored, so leading markup before a label needs no pattern.
const (
	// wordStart stands in for \b, which treats '_' as a word character.
	wordStart = `(?:^|[^\pL\pN])`
	// nextLine lets a value sit at the start of the line after its label, as
	// Slack section fields render "*Charter Id:*\n1234".
	nextLine = `(?:\n[ \t*_~]*)?`
	// labelGap skips anything up to a numeric value on the label's line, or
	// to the start of the next line.
	labelGap = `[^0-9\n]*` + nextLine
)

var (
	charterIDPattern  = regexp.MustCompile(`(?i)charter[ \t]*id` + labelGap + `([0-9]+)`)
	namePattern       = regexp.MustCompile(`(?im)` + wordStart + `name[ \t*_~]*:[ \t*_~]*` + nextLine + `([^\n]+)`)
	phonePattern      = regexp.MustCompile(`(?i)` + wordStart + `phone[^0-9\n]*?` + nextLine + `([+(]*[0-9][0-9 \t+()\-]*)`)
	pickUpDatePattern = regexp.MustCompile(`(?i)pick[ \t\-]*up[ \t]*date` + labelGap + `([0-9][0-9\-]*)`)
	returnDatePattern = regexp.MustCompile(`(?i)return[ \t]*date` + labelGap + `([0-9][0-9\-]*)`)

	// Slack wraps typed emails and URLs as <target|Display Text>.
	linkPattern = regexp.MustCompile(`<[^<>|]*\|([^<>]*)>`)
)

// DefaultRules is the charter request rule set in declaration order.
var DefaultRules = []Rule{
	{Field: FieldCharterID, Pattern: charterIDPattern, Required: true},
	{Field: FieldName, Pattern: namePattern, Required: true, Normalize: normalizeName},
	{Field: FieldPhone, Pattern: phonePattern, Required: true, Normalize: normalizePhone},
	{Field: FieldPickUpDate, Pattern: pickUpDatePattern, Required: true},
	{Field: FieldReturnDate, Pattern: returnDatePattern},
}

// StripLinks rewrites every <target|Display Text> annotation to Display Text.
func StripLinks(s string) string {
	return linkPattern.ReplaceAllString(s, "$1")
}

func normalizeName(s string) string {
	s = StripLinks(s)
	return strings.Trim(s, " \t\r*_~")
}

// normalizePhone drops trailing separators and the opening bracket of a
// qualifier such as "(mobile)" that follows the number.
func normalizePhone(s string) string {
	return strings.TrimRight(s, " \t-(")
}
