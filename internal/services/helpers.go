package services

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeActor trims, collapses whitespace, and title-cases a recorded
// user name, falling back to a fixed placeholder when blank. Audit entries
// and notification mail always carry the normalized form.
func normalizeActor(locale language.Tag, name string) string {
	name = actorSpaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return defaultActor
	}
	if locale == language.Und {
		locale = language.English
	}
	return cases.Title(locale).String(name)
}

// actorSpaceRE collapses consecutive whitespace to a single space.
var actorSpaceRE = regexp.MustCompile(`\s+`)

func itoa(n int) string { return strconv.Itoa(n) }

// ftoa renders costs the way they are audited: no exponent, no trailing
// zero noise.
func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
