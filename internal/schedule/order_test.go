package schedule_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/whatnext/internal/schedule"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func ids(items []schedule.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}

	return out
}

func TestSortScenarioA(t *testing.T) {
	t.Parallel()

	items := []schedule.Item{
		{ID: "A", Due: at(ms(7_200_000)), WCET: ms(3_600_000)},
		{ID: "B", Due: at(ms(3_600_000)), WCET: ms(3_600_000)},
	}

	sorted := schedule.Sort(items, epoch)

	if diff := cmp.Diff([]string{"B", "A"}, ids(sorted)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"A", "B"}, ids(items)); diff != "" {
		t.Errorf("Sort modified its input (-want +got):\n%s", diff)
	}
}

func TestSortTiersAndTies(t *testing.T) {
	t.Parallel()

	items := []schedule.Item{
		{ID: "done", Due: at(time.Hour), Progress: 1},
		{ID: "open-b", WCET: time.Hour},
		{ID: "open-a", WCET: 2 * time.Hour},
		{ID: "tie-b", Due: at(2 * time.Hour), WCET: time.Hour},
		{ID: "tie-a", Due: at(3 * time.Hour), WCET: 2 * time.Hour},
		{ID: "late", Due: at(time.Hour), WCET: 3 * time.Hour},
	}

	want := []string{"late", "tie-a", "tie-b", "open-a", "open-b", "done"}

	if diff := cmp.Diff(want, ids(schedule.Sort(items, epoch))); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareIsStrictTotalOrder(t *testing.T) {
	t.Parallel()

	sign := func(v int) int {
		switch {
		case v < 0:
			return -1
		case v > 0:
			return 1
		}

		return 0
	}

	rapid.Check(t, func(t *rapid.T) {
		items := genItems(6).Draw(t, "items")
		t0 := at(time.Duration(rapid.Int64Range(-600, 600).Draw(t, "t0")) * time.Minute)

		for i := range items {
			for j := range items {
				ab := sign(schedule.Compare(&items[i], &items[j], t0))
				ba := sign(schedule.Compare(&items[j], &items[i], t0))

				if ab != -ba {
					t.Fatalf("Compare not antisymmetric for %s/%s: %d vs %d", items[i].ID, items[j].ID, ab, ba)
				}

				if i != j && ab == 0 {
					t.Fatalf("distinct items %s and %s compare equal", items[i].ID, items[j].ID)
				}

				for k := range items {
					bc := sign(schedule.Compare(&items[j], &items[k], t0))
					ac := sign(schedule.Compare(&items[i], &items[k], t0))

					if ab < 0 && bc < 0 && ac >= 0 {
						t.Fatalf("Compare not transitive for %s < %s < %s", items[i].ID, items[j].ID, items[k].ID)
					}
				}
			}
		}
	})
}

func TestSortIsDeterministic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		items := genItems(8).Draw(t, "items")

		reversed := make([]schedule.Item, len(items))
		for idx, item := range items {
			reversed[len(items)-1-idx] = item
		}

		if diff := cmp.Diff(ids(schedule.Sort(items, epoch)), ids(schedule.Sort(reversed, epoch))); diff != "" {
			t.Fatalf("sort depends on input order (-a +b):\n%s", diff)
		}
	})
}
