package jira

import (
	"slices"
	"testing"
)

func TestProjectJQL(t *testing.T) {
	tests := []struct {
		key, start, end string
		want            string
	}{
		{"ABC", "", "", `project = ABC`},
		{"ABC", "2024-01-01", "", `project = ABC AND created >= "2024-01-01"`},
		{"ABC", "", "2024-02-01", `project = ABC AND created <= "2024-02-01"`},
		{"ABC", "2024-01-01", "2024-02-01", `project = ABC AND created >= "2024-01-01" AND created <= "2024-02-01"`},
	}

	for _, tt := range tests {
		if got := ProjectJQL(tt.key, tt.start, tt.end); got != tt.want {
			t.Errorf("ProjectJQL(%q, %q, %q) = %q, want %q", tt.key, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestSearchFields(t *testing.T) {
	got := SearchFields([]string{"customfield_10016", " ", "status", "customfield_10016", "customfield_10058"})
	want := append(slices.Clone(BaseFields), "customfield_10016", "customfield_10058")
	if !slices.Equal(got, want) {
		t.Errorf("SearchFields = %v, want %v", got, want)
	}
}
