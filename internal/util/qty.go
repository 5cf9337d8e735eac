package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern  = regexp.MustCompile(`(?:^|[^0-9.,])(\d{1,3}(?:[\s.,]\d{3})+|\d+(?:[.,]\d+)?)\s*([kKmM]?)`)
	thousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	thousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	digitGroups    = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
	integerPattern = regexp.MustCompile(`\d+`)
)

type ParsedQty struct {
	Value *float64
	Raw   *string
}

// ParseQuantity reads the first number in an icon caption such as "2",
// "×10", "0.5" or "1.2k". Captions without a number give a nil Value.
func ParseQuantity(input string) ParsedQty {
	line := strings.ReplaceAll(input, "\u00A0", " ")
	line = strings.TrimSpace(line)
	if line == "" {
		return ParsedQty{}
	}

	m := numberPattern.FindStringSubmatch(line)
	if len(m) < 2 {
		return ParsedQty{}
	}

	raw := strings.TrimSpace(m[1] + m[2])
	parsed, err := strconv.ParseFloat(normalizeNumericToken(m[1]), 64)
	if err != nil {
		return ParsedQty{Raw: &raw}
	}
	switch m[2] {
	case "k", "K":
		parsed *= 1000
	case "m", "M":
		parsed *= 1000000
	}
	return ParsedQty{Value: FloatPtr(parsed), Raw: &raw}
}

// FirstInt returns the first run of digits in text, reading "1,000" as 1000.
func FirstInt(text string) *int {
	compact := digitGroups.ReplaceAllStringFunc(strings.ReplaceAll(text, "\u00A0", ""), func(group string) string {
		return strings.ReplaceAll(group, ",", "")
	})
	token := integerPattern.FindString(compact)
	if token == "" {
		return nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return nil
	}
	return &n
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if thousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if thousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
