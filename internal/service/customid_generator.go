package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"inventory-catalog-api/internal/model"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"go.uber.org/zap"
)

// Entropy supplies the random and time inputs of custom ID generation.
type Entropy interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
	NewGUID() uuid.UUID
	Now() time.Time
}

type systemEntropy struct{}

func (systemEntropy) IntN(n int) int { return rand.IntN(n) }

func (systemEntropy) NewGUID() uuid.UUID { return uuid.New() }

func (systemEntropy) Now() time.Time { return time.Now() }

// SystemEntropy uses math/rand, random UUIDs and the wall clock.
func SystemEntropy() Entropy { return systemEntropy{} }

// half-open ranges drawn by the random element types
var randomRanges = map[model.ElementType][2]int{
	model.ElementRandom20Bit:  {0, 1 << 20},
	model.ElementRandom32Bit:  {0, math.MaxInt32},
	model.ElementRandom6Digit: {100000, 999999},
	model.ElementRandom9Digit: {100000000, 999999999},
}

var (
	paddedFormat   = regexp.MustCompile(`^([DX])(\d+)(.*)$`)
	guidFormat     = regexp.MustCompile(`(?i)^([ndbp])(.*)$`)
	zeroRunFormat  = regexp.MustCompile(`^(0+)(.*)$`)
	sequencePadded = regexp.MustCompile(`^D(\d+)(.*)$`)
)

// CustomIDGenerator renders custom IDs from a legacy format string or an
// ordered element list.
type CustomIDGenerator struct {
	entropy Entropy
	logger  *zap.Logger
}

// NewCustomIDGenerator creates a generator. A nil entropy uses SystemEntropy.
func NewCustomIDGenerator(entropy Entropy, logger *zap.Logger) *CustomIDGenerator {
	if entropy == nil {
		entropy = SystemEntropy()
	}
	return &CustomIDGenerator{entropy: entropy, logger: logger}
}

// GenerateSimple substitutes the legacy placeholders in format.
// Unknown placeholders are left as they are.
func (g *CustomIDGenerator) GenerateSimple(format string, itemNumber int) string {
	now := g.entropy.Now()
	r := strings.NewReplacer(
		"{SEQUENCE}", fmt.Sprintf("%04d", itemNumber),
		"{RANDOM}", strconv.Itoa(1000+g.entropy.IntN(8999)),
		"{GUID}", strings.ToUpper(hexGUID(g.entropy.NewGUID())[:8]),
		"{DATE}", now.Format("20060102"),
		"{TIME}", now.Format("1504"),
	)
	return r.Replace(format)
}

// GenerateAdvanced concatenates the rendered elements in Order.
// With no elements the bare item number is returned.
func (g *CustomIDGenerator) GenerateAdvanced(elements []model.CustomIDElement, itemNumber int) string {
	if len(elements) == 0 {
		return strconv.Itoa(itemNumber)
	}

	var b strings.Builder
	for _, e := range model.SortedElements(elements) {
		part, ok := g.render(e, itemNumber)
		if !ok {
			g.logger.Warn("skipping unknown custom id element",
				zap.String("element_id", e.ID), zap.String("type", string(e.Type)))
			continue
		}
		b.WriteString(part)
	}
	return b.String()
}

func (g *CustomIDGenerator) render(e model.CustomIDElement, itemNumber int) (string, bool) {
	t := e.Type.Normalize()
	switch t {
	case model.ElementFixed:
		return e.Value, true
	case model.ElementRandom20Bit, model.ElementRandom32Bit, model.ElementRandom6Digit, model.ElementRandom9Digit:
		bounds := randomRanges[t]
		n := bounds[0] + g.entropy.IntN(bounds[1]-bounds[0])
		return formatRandom(n, e.Value), true
	case model.ElementGUID:
		return formatGUID(g.entropy.NewGUID(), e.Value), true
	case model.ElementDateTime:
		return formatDateTime(g.entropy.Now(), e.Value), true
	case model.ElementSequence:
		return formatSequence(itemNumber, e.Value), true
	}
	return "", false
}

// formatRandom applies D<n> (zero padded) or X<n> (upper hex) with a literal
// suffix. Any other non-empty format keeps everything after its first character.
func formatRandom(n int, format string) string {
	if format == "" {
		return strconv.Itoa(n)
	}
	if m := paddedFormat.FindStringSubmatch(format); m != nil {
		width, _ := strconv.Atoi(m[2])
		if m[1] == "X" {
			return fmt.Sprintf("%0*X", width, n) + m[3]
		}
		return fmt.Sprintf("%0*d", width, n) + m[3]
	}
	return strconv.Itoa(n) + format[1:]
}

func hexGUID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// formatGUID accepts N (32 hex), D (hyphenated), B ({...}) or P ((...))
// followed by a literal suffix. Anything else is N with the whole format as suffix.
func formatGUID(id uuid.UUID, format string) string {
	verb, suffix := "N", format
	if m := guidFormat.FindStringSubmatch(format); m != nil {
		verb, suffix = strings.ToUpper(m[1]), m[2]
	}
	switch verb {
	case "D":
		return id.String() + suffix
	case "B":
		return "{" + id.String() + "}" + suffix
	case "P":
		return "(" + id.String() + ")" + suffix
	}
	return hexGUID(id) + suffix
}

// formatSequence pads for a leading zero run ("000") or D<n>, keeping the
// rest as suffix. Other formats yield the bare number.
func formatSequence(n int, format string) string {
	if m := zeroRunFormat.FindStringSubmatch(format); m != nil {
		return fmt.Sprintf("%0*d", len(m[1]), n) + m[2]
	}
	if m := sequencePadded.FindStringSubmatch(format); m != nil {
		width, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%0*d", width, n) + m[2]
	}
	return strconv.Itoa(n)
}

// date tokens, longest first so "yyyy" wins over "yy"
var dateTokens = []string{"yyyy", "yy", "MM", "M", "dd", "d", "HH", "H", "hh", "h", "mm", "m", "ss", "s"}

func dateTokenValue(t time.Time, token string) string {
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	switch token {
	case "yyyy":
		return fmt.Sprintf("%04d", t.Year())
	case "yy":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "dd":
		return fmt.Sprintf("%02d", t.Day())
	case "d":
		return strconv.Itoa(t.Day())
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return fmt.Sprintf("%02d", hour12)
	case "h":
		return strconv.Itoa(hour12)
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return fmt.Sprintf("%02d", t.Second())
	case "s":
		return strconv.Itoa(t.Second())
	}
	return token
}

// scanDateFormat walks a yyyy/MM/dd style format, calling onToken for each
// date token and onLiteral for every other character.
func scanDateFormat(format string, onToken func(token string), onLiteral func(s string)) {
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok) {
				onToken(tok)
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			onLiteral(format[i : i+1])
			i++
		}
	}
}

// formatDateTime renders yyyy/MM/dd style tokens, or strftime directives
// when the format contains '%'. An empty format renders the year.
func formatDateTime(t time.Time, format string) string {
	if format == "" {
		format = "yyyy"
	}
	if strings.Contains(format, "%") {
		return strftime.Format(format, t)
	}
	var b strings.Builder
	scanDateFormat(format,
		func(tok string) { b.WriteString(dateTokenValue(t, tok)) },
		func(s string) { b.WriteString(s) })
	return b.String()
}
