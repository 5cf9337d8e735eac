package util

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reLocaleSuffix = regexp.MustCompile(`/(ja|en)$`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// CodeFromHref turns a wiki link such as "/Iron_plate/ja" or
// "https://wiki.factorio.com/Iron_plate" into the item code "Iron_plate".
func CodeFromHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
		if unescaped, err := url.PathUnescape(u.EscapedPath()); err == nil {
			path = unescaped
		}
	}
	path = strings.Trim(path, "/")
	path = strings.TrimPrefix(path, "wiki/")
	path = reLocaleSuffix.ReplaceAllString("/"+path, "")
	return strings.Trim(path, "/")
}

// HasLocaleSuffix reports whether href points at the locale's page variant.
// The en variant has no suffix.
func HasLocaleSuffix(href, locale string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(href), "/")
	if locale == "en" {
		return !reLocaleSuffix.MatchString(trimmed)
	}
	return strings.HasSuffix(trimmed, "/"+locale)
}

func ContainsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// NormalizeName folds case and treats '_' as a space so "Iron_plate" and
// "iron plate" compare equal.
func NormalizeName(input string) string {
	s := strings.ReplaceAll(input, "_", " ")
	return strings.ToLower(NormalizeSpaces(s))
}
