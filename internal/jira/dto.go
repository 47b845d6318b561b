package jira

import (
	"encoding/json"
	"strings"
	"time"
)

// SearchResponse is the top-level container for Jira search results.
type SearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	ID     string    `json:"id"`
	Key    string    `json:"key"`
	Fields FieldsDTO `json:"fields"`
}

// FieldsDTO contains the specific fields we care about.
// Custom fields are kept raw in Custom, keyed by field id.
type FieldsDTO struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Assignee       *User  `json:"assignee,omitempty"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	ResolutionDate string `json:"resolutiondate,omitempty"`

	Custom map[string]json.RawMessage `json:"-"`
}

type fieldsAlias FieldsDTO

func (f *FieldsDTO) UnmarshalJSON(data []byte) error {
	var known fieldsAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	*f = FieldsDTO(known)
	for k, v := range all {
		if !strings.HasPrefix(k, "customfield_") {
			continue
		}
		if f.Custom == nil {
			f.Custom = make(map[string]json.RawMessage)
		}
		f.Custom[k] = v
	}
	return nil
}

func (f FieldsDTO) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(fieldsAlias(f))
	if err != nil {
		return nil, err
	}
	if len(f.Custom) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.Custom {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// errorResponse is the error body Jira returns on non-2xx responses.
type errorResponse struct {
	ErrorMessages []string `json:"errorMessages"`
	Message       string   `json:"message"`
}

type pagedValues[T any] struct {
	StartAt    int  `json:"startAt"`
	MaxResults int  `json:"maxResults"`
	IsLast     bool `json:"isLast"`
	Values     []T  `json:"values"`
}

// ParseTime parses a Jira timestamp. Jira emits "2006-01-02T15:04:05.000-0700";
// RFC3339 is accepted as well since synthetic and exported data often use it.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000-0700", s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2, nil
	}
	return time.Time{}, err
}

// FormatTime renders t in the Jira timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000-0700")
}
