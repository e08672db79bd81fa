package parse

import (
	"regexp"
	"strings"

	"remindful/pkg/reminder"
)

// The classifiers are ordered rule tables evaluated first-match-wins.
// Rule order is part of the contract: e.g. "urgent doctor appointment"
// is urgent before it is anything else.

var priorityRules = []struct {
	re       *regexp.Regexp
	priority reminder.Priority
}{
	{regexp.MustCompile(`(?i)urgent|asap|immediately|critical`), reminder.PriorityUrgent},
	{regexp.MustCompile(`(?i)important|high\s+priority|crucial`), reminder.PriorityHigh},
	{regexp.MustCompile(`(?i)low\s+priority|when\s+possible|sometime`), reminder.PriorityLow},
	{regexp.MustCompile(`(?i)normal|medium|regular`), reminder.PriorityMedium},
}

// DetectPriority returns the first matching priority rule, defaulting to medium.
func DetectPriority(message string) reminder.Priority {
	for _, rule := range priorityRules {
		if rule.re.MatchString(message) {
			return rule.priority
		}
	}
	return reminder.PriorityMedium
}

var categoryRules = []struct {
	re       *regexp.Regexp
	category reminder.Category
}{
	{regexp.MustCompile(`(?i)work|meeting|office|project|boss|client|deadline`), reminder.CategoryWork},
	{regexp.MustCompile(`(?i)doctor|appointment|medicine|health|exercise|gym`), reminder.CategoryHealth},
	{regexp.MustCompile(`(?i)buy|shopping|groceries|store|purchase`), reminder.CategoryShopping},
	{regexp.MustCompile(`(?i)bank|payment|bill|finance|money|budget`), reminder.CategoryFinance},
	{regexp.MustCompile(`(?i)family|personal|home|friend`), reminder.CategoryPersonal},
}

// DetectCategory returns the first matching category rule, defaulting to personal.
func DetectCategory(message string) reminder.Category {
	for _, rule := range categoryRules {
		if rule.re.MatchString(message) {
			return rule.category
		}
	}
	return reminder.CategoryPersonal
}

var tagRe = regexp.MustCompile(`#(\w+)`)

// ExtractTags returns every #word token lower-cased, de-duplicated,
// preserving order of first appearance.
func ExtractTags(message string) []string {
	matches := tagRe.FindAllStringSubmatch(message, -1)
	tags := []string{}
	seen := make(map[string]bool)
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
