package domain

import "strings"

// riskKeywords flag an article as high-risk when any of them appears in the
// title or excerpt. Matching is case-insensitive substring search.
var riskKeywords = []string{
	"zero-day",
	"0-day",
	"exploit",
	"vulnerability",
	"critical",
	"cve-",
	"ransomware",
	"breach",
}

// categoryRule maps source-name fragments to a category. Rules are checked
// in order and the first match wins.
type categoryRule struct {
	category Category
	keywords []string
}

var categoryRules = []categoryRule{
	{CategoryAdvisory, []string{"cisa", "us-cert", "cert", "advisory", "nvd"}},
	{CategoryNews, []string{"hacker news", "bleeping", "krebs", "dark reading", "security week"}},
	{CategoryResearch, []string{"research", "labs", "project zero", "talos"}},
}

// Classify derives the category and risk flag for an article. It is total:
// every input yields exactly one category, falling back to general.
func Classify(sourceName, title, excerpt string) (Category, bool) {
	return classifyCategory(sourceName), isRisky(title, excerpt)
}

func classifyCategory(sourceName string) Category {
	name := strings.ToLower(sourceName)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

func isRisky(title, excerpt string) bool {
	haystack := strings.ToLower(title + " " + excerpt)
	for _, kw := range riskKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
