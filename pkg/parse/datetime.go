package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Resolver converts a time-referring text fragment plus a reference instant
// into an absolute time. It tries a relative-offset match, then a table of
// literal keyword rules, then the general natural-language grammar. All
// arithmetic starts from the caller's reference instant, never an implicit
// now, so resolution is deterministic.
type Resolver struct {
	grammar *when.Parser
}

// NewResolver creates a Resolver with the English grammar rules loaded.
func NewResolver() *Resolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Resolver{grammar: w}
}

type literalRule struct {
	re      *regexp.Regexp
	resolve func(m []string, ref time.Time) time.Time
}

var literalRules = []literalRule{
	{regexp.MustCompile(`(?i)(\d+)\s*(min|mins|minutes?)`), func(m []string, ref time.Time) time.Time {
		n, _ := strconv.Atoi(m[1])
		return ref.Add(time.Duration(n) * time.Minute)
	}},
	{regexp.MustCompile(`(?i)(\d+)\s*(hrs?|hours?)`), func(m []string, ref time.Time) time.Time {
		n, _ := strconv.Atoi(m[1])
		return ref.Add(time.Duration(n) * time.Hour)
	}},
	{regexp.MustCompile(`(?i)(\d+)\s*(days?)`), func(m []string, ref time.Time) time.Time {
		n, _ := strconv.Atoi(m[1])
		return atHour(ref.AddDate(0, 0, n), 9)
	}},
	{regexp.MustCompile(`(?i)tomorrow`), func(_ []string, ref time.Time) time.Time {
		return atHour(ref.AddDate(0, 0, 1), 9)
	}},
	{regexp.MustCompile(`(?i)today`), func(_ []string, ref time.Time) time.Time {
		return ref.Add(time.Hour)
	}},
	{regexp.MustCompile(`(?i)tonight`), func(_ []string, ref time.Time) time.Time {
		return atHour(ref, 20)
	}},
	{regexp.MustCompile(`(?i)(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`), func(m []string, ref time.Time) time.Time {
		target := weekdayOrdinals[strings.ToLower(m[1])]
		daysAhead := (target - int(ref.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		return atHour(ref.AddDate(0, 0, daysAhead), 9)
	}},
}

// Resolve converts text to an absolute time relative to ref. The second
// return value is false when no rule matches.
func (r *Resolver) Resolve(text string, ref time.Time) (time.Time, bool) {
	for _, rule := range literalRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return rule.resolve(m, ref), true
		}
	}
	if res, err := r.grammar.Parse(text, ref); err == nil && res != nil {
		return res.Time, true
	}
	return time.Time{}, false
}

// ResolveGrammar runs only the general natural-language grammar over text,
// returning the matched phrase alongside the resolved time.
func (r *Resolver) ResolveGrammar(text string, ref time.Time) (t time.Time, phrase string, ok bool) {
	res, err := r.grammar.Parse(text, ref)
	if err != nil || res == nil {
		return time.Time{}, "", false
	}
	return res.Time, res.Text, true
}

// atHour pins t to the given local hour with minutes zeroed.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
