package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"

	"autochat/internal/domain"
)

const defaultMatchTopK = 3

// Job is one internal job posting the matcher can return.
type Job struct {
	JobID         string `json:"jobId"`
	Title         string `json:"title"`
	Level         string `json:"level"`
	Location      string `json:"location"`
	OrgLine       string `json:"orgLine"`
	HiringManager string `json:"hiringManager"`
	MatchScore    int    `json:"matchScore"`
	PostedDate    string `json:"postedDate"`
}

// DefaultJobs is the built-in posting fixture used when no job feed is
// configured.
func DefaultJobs(now time.Time) []Job {
	day := func(n int) string { return now.AddDate(0, 0, -n).Format("2006-01-02") }
	return []Job{
		{
			JobID:         "331525BR",
			Title:         "GenAI Lead",
			Level:         "Executive Director",
			Location:      "United States",
			OrgLine:       "GWM COO Americas",
			HiringManager: "Prasanth Jagannathan",
			MatchScore:    92,
			PostedDate:    day(3),
		},
		{
			JobID:         "328914BR",
			Title:         "Senior Data Scientist",
			Level:         "Vice President",
			Location:      "New York",
			OrgLine:       "Group Technology",
			HiringManager: "Maria Chen",
			MatchScore:    85,
			PostedDate:    day(12),
		},
		{
			JobID:         "330702BR",
			Title:         "AI Platform Engineer",
			Level:         "Director",
			Location:      "London",
			OrgLine:       "Group Technology",
			HiringManager: "Tom Okafor",
			MatchScore:    78,
			PostedDate:    day(25),
		},
	}
}

// GetMatchesTool returns the top matching job postings for the user.
type GetMatchesTool struct {
	jobs   []Job
	now    func() time.Time
	logger *slog.Logger
}

// NewGetMatchesTool creates the matcher over a fixed posting list. A nil
// now func defaults to time.Now.
func NewGetMatchesTool(jobs []Job, now func() time.Time, logger *slog.Logger) *GetMatchesTool {
	if now == nil {
		now = time.Now
	}
	if jobs == nil {
		jobs = DefaultJobs(now())
	}
	return &GetMatchesTool{jobs: jobs, now: now, logger: logger}
}

func (t *GetMatchesTool) Name() string { return "get_matches" }

func (t *GetMatchesTool) Description() string {
	return "Finds and returns the top matching internal job postings that best fit the user's profile and preferences."
}

func (t *GetMatchesTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"filters": {
					"type": "object",
					"description": "Optional attribute filters, e.g. location or level."
				},
				"search_text": {
					"type": "string",
					"description": "Optional free-text search query."
				},
				"top_k": {
					"type": "integer",
					"description": "Number of postings to return (default 3)."
				}
			}
		}`),
	}
}

type getMatchesParams struct {
	Filters    map[string]any `json:"filters"`
	SearchText string         `json:"search_text"`
	TopK       *int           `json:"top_k"`
}

type jobMatch struct {
	Job
	DaysAgo *int `json:"daysAgo"`
	IsNew   bool `json:"isNew"`
}

func (t *GetMatchesTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.get_matches", t.logger, params,
		func(ctx context.Context, span trace.Span, p getMatchesParams) (any, error) {
			topK := defaultMatchTopK
			if p.TopK != nil {
				topK = *p.TopK
			}
			if topK < 1 {
				return failure("top_k must be a positive integer."), nil
			}
			if topK > len(t.jobs) {
				topK = len(t.jobs)
			}

			today := t.now()
			matches := make([]jobMatch, 0, topK)
			total := 0
			for _, job := range t.jobs[:topK] {
				m := jobMatch{Job: job}
				if job.PostedDate != "" {
					if posted, err := time.Parse("2006-01-02", job.PostedDate); err == nil {
						days := int(today.Sub(posted).Hours() / 24)
						m.DaysAgo = &days
						m.IsNew = days <= 7
					}
				}
				total += job.MatchScore
				matches = append(matches, m)
			}

			avg := 0.0
			if len(matches) > 0 {
				avg = math.Round(float64(total)/float64(len(matches))*100) / 100
			}

			filters := p.Filters
			if filters == nil {
				filters = map[string]any{}
			}

			return map[string]any{
				"success":          true,
				"error":            nil,
				"matches":          matches,
				"count":            len(matches),
				"averageScore":     avg,
				"filters_applied":  filters,
				"search_text_used": p.SearchText,
			}, nil
		})
}
