package domain

import "time"

// Article is the core entity: one security-news item keyed by its link.
type Article struct {
	Source      string    `json:"source"`
	Category    Category  `json:"category,omitempty"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	RawSummary  string    `json:"raw_summary"`
	Summary     string    `json:"summary"`
	Date        string    `json:"date"`
	PublishedAt time.Time `json:"timestamp"`
	IsZeroDay   bool      `json:"is_zeroday"`
	Processed   bool      `json:"processed,omitempty"`
}

// Category classifies an article by the kind of source it came from.
type Category string

const (
	CategoryAdvisory Category = "advisory"
	CategoryNews     Category = "news"
	CategoryResearch Category = "research"
	CategoryGeneral  Category = "general"
)

// DateLayout is the human-readable timestamp used in reports.
const DateLayout = "2006-01-02 15:04"

// Normalize fills defaults for optional fields so records read back from
// older snapshots stay usable. Unknown categories collapse to general.
func (a *Article) Normalize() {
	switch a.Category {
	case CategoryAdvisory, CategoryNews, CategoryResearch, CategoryGeneral:
	default:
		a.Category = CategoryGeneral
	}

	a.PublishedAt = a.PublishedAt.UTC()
	if a.Date == "" {
		a.Date = a.PublishedAt.Format(DateLayout)
	}
	if a.Summary == "" {
		a.Summary = a.RawSummary
	}
}
