package service

import (
	"fmt"
	"regexp"
	"strings"

	"inventory-catalog-api/internal/model"
)

// MaxCustomIDLength bounds ids accepted when no element list is configured.
const MaxCustomIDLength = 100

const guidHyphenated = `[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}`

// default patterns for random elements without a format
var randomPatterns = map[model.ElementType]string{
	model.ElementRandom20Bit:  `\d{1,7}`,
	model.ElementRandom32Bit:  `\d{1,10}`,
	model.ElementRandom6Digit: `\d{6}`,
	model.ElementRandom9Digit: `\d{9}`,
}

// strftime directives that always render digits
var strftimeDigits = map[byte]string{
	'Y': `\d{4}`, 'y': `\d{2}`, 'm': `\d{2}`, 'd': `\d{2}`, 'e': `[ \d]\d`,
	'H': `\d{2}`, 'I': `\d{2}`, 'M': `\d{2}`, 'S': `\d{2}`, 'j': `\d{3}`,
	'F': `\d{4}-\d{2}-\d{2}`, 'T': `\d{2}:\d{2}:\d{2}`, 'R': `\d{2}:\d{2}`,
}

// buildValidationPattern returns an anchored expression matching every id the
// elements can produce. An empty pattern means nothing contributes.
func buildValidationPattern(elements []model.CustomIDElement) string {
	var parts []string
	for _, e := range model.SortedElements(elements) {
		if p := elementPattern(e); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "^" + strings.Join(parts, "") + "$"
}

func elementPattern(e model.CustomIDElement) string {
	t := e.Type.Normalize()
	switch t {
	case model.ElementFixed:
		return regexp.QuoteMeta(e.Value)
	case model.ElementRandom20Bit, model.ElementRandom32Bit, model.ElementRandom6Digit, model.ElementRandom9Digit:
		return randomPattern(e.Value, randomPatterns[t])
	case model.ElementGUID:
		return guidPattern(e.Value)
	case model.ElementDateTime:
		return dateTimePattern(e.Value)
	case model.ElementSequence:
		return sequencePattern(e.Value)
	}
	return ""
}

func randomPattern(format, fallback string) string {
	if format == "" {
		return fallback
	}
	if m := paddedFormat.FindStringSubmatch(format); m != nil {
		digits := `\d`
		if m[1] == "X" {
			digits = `[0-9A-F]`
		}
		return fmt.Sprintf("%s{%s,}%s", digits, m[2], regexp.QuoteMeta(m[3]))
	}
	return `\d+` + regexp.QuoteMeta(format[1:])
}

func guidPattern(format string) string {
	verb, suffix := "N", format
	if m := guidFormat.FindStringSubmatch(format); m != nil {
		verb, suffix = strings.ToUpper(m[1]), m[2]
	}
	var body string
	switch verb {
	case "D":
		body = guidHyphenated
	case "B":
		body = `\{` + guidHyphenated + `\}`
	case "P":
		body = `\(` + guidHyphenated + `\)`
	default:
		body = `[a-fA-F0-9]{32}`
	}
	return body + regexp.QuoteMeta(suffix)
}

func dateTimePattern(format string) string {
	if format == "" {
		format = "yyyy"
	}
	var b strings.Builder
	if strings.Contains(format, "%") {
		for i := 0; i < len(format); i++ {
			if format[i] != '%' || i+1 == len(format) {
				b.WriteString(regexp.QuoteMeta(format[i : i+1]))
				continue
			}
			i++
			if p, ok := strftimeDigits[format[i]]; ok {
				b.WriteString(p)
			} else if format[i] == '%' {
				b.WriteString("%")
			} else {
				b.WriteString(`\S+?`)
			}
		}
		return b.String()
	}
	scanDateFormat(format,
		func(tok string) {
			switch len(tok) {
			case 4:
				b.WriteString(`\d{4}`)
			case 2:
				b.WriteString(`\d{2}`)
			default:
				b.WriteString(`\d{1,2}`)
			}
		},
		func(s string) { b.WriteString(regexp.QuoteMeta(s)) })
	return b.String()
}

func sequencePattern(format string) string {
	if m := zeroRunFormat.FindStringSubmatch(format); m != nil {
		return fmt.Sprintf(`\d{%d,}%s`, len(m[1]), regexp.QuoteMeta(m[2]))
	}
	if m := sequencePadded.FindStringSubmatch(format); m != nil {
		return fmt.Sprintf(`\d{%s,}%s`, m[1], regexp.QuoteMeta(m[2]))
	}
	return `\d+`
}

// ValidateCustomIDFormat reports whether customID could have been produced by
// elements. With no elements any non-blank id up to MaxCustomIDLength passes.
func ValidateCustomIDFormat(customID string, elements []model.CustomIDElement) bool {
	if strings.TrimSpace(customID) == "" {
		return false
	}
	if len(elements) == 0 {
		return len(customID) <= MaxCustomIDLength
	}
	pattern := buildValidationPattern(elements)
	if pattern == "" {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(customID)
}

// FormatExample renders elements with placeholders, e.g. "INV-[SEQUENCE]".
func FormatExample(elements []model.CustomIDElement) string {
	if len(elements) == 0 {
		return "No format defined"
	}

	var b strings.Builder
	for _, e := range model.SortedElements(elements) {
		switch e.Type.Normalize() {
		case model.ElementFixed:
			b.WriteString(e.Value)
		case model.ElementRandom20Bit:
			b.WriteString("[20-bit-random]")
		case model.ElementRandom32Bit:
			b.WriteString("[32-bit-random]")
		case model.ElementRandom6Digit:
			b.WriteString("[6-digit-random]")
		case model.ElementRandom9Digit:
			b.WriteString("[9-digit-random]")
		case model.ElementGUID:
			b.WriteString("[GUID]")
		case model.ElementDateTime:
			switch {
			case strings.Contains(e.Value, "yyyy"), strings.Contains(e.Value, "%Y"):
				b.WriteString("[YYYY]")
			case strings.Contains(e.Value, "yy"), strings.Contains(e.Value, "%y"):
				b.WriteString("[YY]")
			default:
				b.WriteString("[DATE]")
			}
		case model.ElementSequence:
			b.WriteString("[SEQUENCE]")
		default:
			t := strings.ToUpper(string(e.Type))
			if t == "" {
				t = "UNKNOWN"
			}
			b.WriteString("[" + t + "]")
		}
	}
	return b.String()
}

// ValidationMessage explains why customID was rejected.
func ValidationMessage(customID string, elements []model.CustomIDElement) string {
	switch {
	case customID == "":
		return "Custom ID cannot be empty."
	case len(customID) > MaxCustomIDLength:
		return fmt.Sprintf("Custom ID cannot be longer than %d characters.", MaxCustomIDLength)
	case strings.TrimSpace(customID) == "":
		return "Custom ID cannot contain only whitespace."
	case len(elements) == 0:
		return "Custom ID format is invalid."
	}
	return fmt.Sprintf("Custom ID '%s' does not match the required format. Example: %s", customID, FormatExample(elements))
}
