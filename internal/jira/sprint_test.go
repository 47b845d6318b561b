package jira

import "testing"

func TestSortSprints(t *testing.T) {
	sprints := []Sprint{
		{ID: 1, Name: "Sprint 1", State: "closed", StartDate: "2024-01-01T00:00:00.000Z"},
		{ID: 2, Name: "Sprint 2", State: "closed", StartDate: "2024-01-15T00:00:00.000Z"},
		{ID: 3, Name: "Sprint 3", State: "active", StartDate: "2024-01-29T00:00:00.000Z"},
		{ID: 4, Name: "Sprint 5", State: "future"},
		{ID: 5, Name: "Sprint 4", State: "future"},
		{ID: 6, Name: "Legacy", State: "archived"},
	}

	got := SortSprints(sprints)

	wantIDs := []int{5, 4, 3, 2, 1, 6}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: expected sprint %d, got %d (order %+v)", i, id, got[i].ID, got)
		}
	}

	if sprints[0].ID != 1 {
		t.Error("SortSprints must not reorder its input")
	}
}

func TestSortSprints_EndDateFallback(t *testing.T) {
	sprints := []Sprint{
		{ID: 1, Name: "A", State: "closed", EndDate: "2024-01-10T00:00:00.000Z"},
		{ID: 2, Name: "B", State: "closed", EndDate: "2024-02-10T00:00:00.000Z"},
	}

	got := SortSprints(sprints)
	if got[0].ID != 2 {
		t.Errorf("expected most recent end date first, got %+v", got)
	}
}
