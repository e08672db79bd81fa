// Package parse turns a free-form natural-language message into a
// structured, time-anchored reminder: task text, absolute due time,
// recurrence rule, priority, category, and tags.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"remindful/pkg/reminder"
)

// Result is the outcome of one parse call. It is never an error: when the
// message can't be understood, Success is false and Response carries a
// clarifying prompt, because the conversational caller always needs
// something to say back.
type Result struct {
	Task       string              `json:"task"`
	DueAt      *time.Time          `json:"datetime,omitempty"`
	Success    bool                `json:"success"`
	Confidence int                 `json:"confidence"` // 0-100, heuristic, not a probability
	Recurrence reminder.Recurrence `json:"recurring"`
	Priority   reminder.Priority   `json:"priority"`
	Category   reminder.Category   `json:"category"`
	Tags       []string            `json:"tags"`
	Response   string              `json:"response"`
}

// Parser orchestrates the detectors, classifiers, and the datetime
// resolver into a single parse pipeline.
type Parser struct {
	resolver *Resolver
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{resolver: NewResolver()}
}

var quickRe = regexp.MustCompile(`(?i)remind me (?:in )?(\d+)\s*(min|mins|minutes?|hrs?|hours?)\s+to (.+)`)

// coarsePattern is one row of the structural fallback table. taskGroup and
// timeGroup index into the regexp's submatches; timeGroup 0 means the
// pattern captures no time fragment.
type coarsePattern struct {
	re        *regexp.Regexp
	taskGroup int
	timeGroup int
}

var coarsePatterns = []coarsePattern{
	{regexp.MustCompile(`(?i)remind me to (.+?) (at |on |by )?(.+)`), 1, 3},
	{regexp.MustCompile(`(?i)remind me (.+?) (at |on |in |for |by )?(.+)`), 1, 3},
	{regexp.MustCompile(`(?i)(.+?) (tomorrow|today|tonight|morning|afternoon|evening|next week|next month)`), 1, 2},
	{regexp.MustCompile(`(?i)(.+?) at (\d{1,2}(?::\d{2})?\s*(?:am|pm))`), 1, 2},
	{regexp.MustCompile(`(?i)(.+?) (?:on |at )?(\w+day)\s*(?:at )?(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`), 1, 2},
	{regexp.MustCompile(`(?i)(.+?) in (\d+) (minutes?|hours?|days?)`), 1, 2},
	{regexp.MustCompile(`(?i)(.+)`), 1, 0},
}

// Parse extracts a structured reminder from message, anchoring all relative
// times to ref. The pipeline is staged: a quick relative fast path, then
// the natural-language grammar over the whole message, then the coarse
// structural patterns; the first stage to commit wins.
func (p *Parser) Parse(message string, ref time.Time) Result {
	msg := strings.TrimSpace(message)

	res := Result{
		Recurrence: DetectRecurrence(msg),
		Priority:   DetectPriority(msg),
		Category:   DetectCategory(msg),
		Tags:       ExtractTags(msg),
	}

	// Stage 1: "remind me in 5 mins to call mom"
	if m := quickRe.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		unit := time.Hour
		if strings.Contains(strings.ToLower(m[2]), "min") {
			unit = time.Minute
		}
		due := ref.Add(time.Duration(n) * unit)
		res.Task = cleanTask(m[3])
		res.DueAt = &due
		res.Success = true
		res.Confidence = 95
		res.Response = confirm(res)
		return res
	}

	// Stage 2: natural-language grammar over the whole message.
	if due, phrase, ok := p.resolver.ResolveGrammar(msg, ref); ok {
		task := cleanTask(strings.Replace(msg, phrase, "", 1))
		if len(task) < 2 {
			task = "Reminder"
		}
		res.Task = task
		res.DueAt = &due
		res.Success = true
		res.Confidence = 90
		res.Response = confirm(res)
		return res
	}

	// Stage 3: coarse structural patterns, first match wins.
	for _, cp := range coarsePatterns {
		m := cp.re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		task := strings.TrimSpace(m[cp.taskGroup])
		if cp.timeGroup > 0 {
			if timeText := strings.TrimSpace(m[cp.timeGroup]); timeText != "" {
				if due, ok := p.resolver.Resolve(timeText, ref); ok {
					res.Task = cleanTask(task)
					res.DueAt = &due
					res.Success = true
					res.Confidence = 80
					res.Response = confirm(res)
					return res
				}
			}
		}
		if task != "" {
			// Structural match but no resolvable time: ask for one.
			res.Task = cleanTask(task)
			res.Response = fmt.Sprintf("Got it! When should I remind you about %q?", res.Task)
			return res
		}
	}

	res.Response = "Sorry, I didn't catch that. Try something like: 'remind me to call mom every Tuesday at 2pm #family urgent'."
	return res
}

var (
	leadingFillerRe = regexp.MustCompile(`(?i)^(remind me to |remind me |to )`)
	recurPhraseRe   = regexp.MustCompile(`(?i)every\s+\w+`)
	spaceRunRe      = regexp.MustCompile(`\s{2,}`)
)

// cleanTask strips leading filler, recurrence phrases, and tag tokens from
// a captured task text.
func cleanTask(task string) string {
	task = strings.TrimSpace(task)
	task = leadingFillerRe.ReplaceAllString(task, "")
	task = recurPhraseRe.ReplaceAllString(task, "")
	task = tagRe.ReplaceAllString(task, "")
	task = spaceRunRe.ReplaceAllString(task, " ")
	return strings.TrimSpace(task)
}

// confirm phrases a successful parse back to the user, including the due
// time and, for recurring reminders, the recurrence in words.
func confirm(res Result) string {
	when := formatDue(*res.DueAt)
	if res.Recurrence.IsRecurring {
		return fmt.Sprintf("I'll remind you to %q %s, starting %s.",
			res.Task, DescribeRecurrence(res.Recurrence), when)
	}
	return fmt.Sprintf("I'll remind you to %q on %s.", res.Task, when)
}

// formatDue renders a due time as weekday, month day, hour:minute meridiem.
func formatDue(t time.Time) string {
	return t.Format("Monday, January 2 at 3:04 PM")
}
