package insights

import (
	"cmp"
	"embed"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"team-insights/internal/analytics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"num":  formatNumber,
	"name": displayName,
}).ParseFS(templateFS, "templates/*.tmpl"))

type bucket struct {
	Name  string
	Count int
}

type promptData struct {
	analytics.TeamAnalytics
	Contributors []analytics.TeamPerformanceData
	Types        []bucket
	Statuses     []bucket
}

// BuildPrompt renders the Scrum-master instruction and the report summary.
// Contributors are listed by story points delivered, highest first.
func BuildPrompt(report analytics.TeamAnalytics) (Prompt, error) {
	data := promptData{
		TeamAnalytics: report,
		Contributors:  analytics.SortUsers(report.UserPerformance, analytics.SortByStoryPointsCompleted, analytics.Descending),
		Types:         buckets(report.IssuesByType),
		Statuses:      buckets(report.IssuesByStatus),
	}

	var system, user strings.Builder
	if err := templates.ExecuteTemplate(&system, "system.tmpl", nil); err != nil {
		return Prompt{}, err
	}
	if err := templates.ExecuteTemplate(&user, "user.tmpl", data); err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system.String(), User: user.String()}, nil
}

// buckets orders a distribution by count desc, then name.
func buckets(m map[string]int) []bucket {
	out := make([]bucket, 0, len(m))
	for k, v := range m {
		out = append(out, bucket{Name: k, Count: v})
	}
	slices.SortFunc(out, func(a, b bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func displayName(u analytics.User) string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.EmailAddress != "":
		return u.EmailAddress
	}
	return "Unknown"
}
