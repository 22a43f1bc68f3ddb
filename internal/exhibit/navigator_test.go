package exhibit

import (
	"errors"
	"testing"
)

func TestOrderIsPinned(t *testing.T) {
	want := []Key{"summary", "dead_code", "commented_code", "todos", "oldest_code", "hall_of_shame", "complexity_heatmap", "timeline"}
	if len(Order) != len(want) {
		t.Fatalf("len(Order) = %d, want %d", len(Order), len(want))
	}
	for i := range want {
		if Order[i] != want[i] {
			t.Fatalf("Order[%d] = %q, want %q", i, Order[i], want[i])
		}
	}
}

func TestNewStartsAtSummaryForward(t *testing.T) {
	n := New()
	if n.Active() != Summary || n.Direction() != Forward {
		t.Fatalf("New() = %s/%s, want summary/forward", n.Active(), n.Direction())
	}
}

func TestDirectionBetween(t *testing.T) {
	for i, from := range Order {
		for j, to := range Order {
			want := Backward
			if j > i {
				want = Forward
			}
			if got := DirectionBetween(from, to); got != want {
				t.Fatalf("DirectionBetween(%s, %s) = %s, want %s", from, to, got, want)
			}
		}
	}
}

func TestSelectUpdatesActiveAndDirection(t *testing.T) {
	n := New()
	if err := n.Select(Timeline); err != nil {
		t.Fatalf("Select(timeline) error = %v", err)
	}
	if n.Active() != Timeline || n.Direction() != Forward {
		t.Fatalf("after Select(timeline) = %s/%s", n.Active(), n.Direction())
	}
	if err := n.Select(Todos); err != nil {
		t.Fatalf("Select(todos) error = %v", err)
	}
	if n.Active() != Todos || n.Direction() != Backward {
		t.Fatalf("after Select(todos) = %s/%s", n.Active(), n.Direction())
	}
}

func TestReselectIsBackward(t *testing.T) {
	n := New()
	_ = n.Select(Summary)
	if n.Active() != Summary || n.Direction() != Backward {
		t.Fatalf("re-selecting summary = %s/%s, want summary/backward", n.Active(), n.Direction())
	}
}

func TestSelectUnknown(t *testing.T) {
	n := New()
	_ = n.Select(Todos)
	err := n.Select(Key("basement"))
	if !errors.Is(err, ErrUnknownExhibit) {
		t.Fatalf("Select(unknown) error = %v, want ErrUnknownExhibit", err)
	}
	if n.Active() != Todos || n.Direction() != Forward {
		t.Fatalf("state changed on unknown select: %s/%s", n.Active(), n.Direction())
	}
}

func TestNextPrevClampAtEnds(t *testing.T) {
	n := New()
	n.Prev()
	if n.Active() != Summary || n.Direction() != Backward {
		t.Fatalf("Prev() at start = %s/%s", n.Active(), n.Direction())
	}
	for range Order {
		n.Next()
	}
	if n.Active() != Timeline || n.Direction() != Backward {
		t.Fatalf("Next() past end = %s/%s, want timeline/backward", n.Active(), n.Direction())
	}
	n.Prev()
	if n.Active() != ComplexityHeatmap || n.Direction() != Backward {
		t.Fatalf("Prev() = %s/%s", n.Active(), n.Direction())
	}
}

func TestParse(t *testing.T) {
	if k, err := Parse("hall_of_shame"); err != nil || k != HallOfShame {
		t.Fatalf("Parse(hall_of_shame) = %q, %v", k, err)
	}
	if _, err := Parse("Summary"); !errors.Is(err, ErrUnknownExhibit) {
		t.Fatalf("Parse(Summary) error = %v, want ErrUnknownExhibit", err)
	}
}

func TestEveryKeyHasProfile(t *testing.T) {
	profiles := ListProfiles()
	if len(profiles) != len(Order) {
		t.Fatalf("ListProfiles() len = %d, want %d", len(profiles), len(Order))
	}
	for i, p := range profiles {
		if p.Key != Order[i] || p.Title == "" || p.Label == "" {
			t.Fatalf("profile %d = %#v", i, p)
		}
	}
}
