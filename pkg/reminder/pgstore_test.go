package reminder

import (
	"strings"
	"testing"
)

// TestTrackExpr verifies which part of the interactions sub-document each
// interaction kind touches, and that a completion without a recorded
// duration writes no completion_minutes at all rather than a zero.
func TestTrackExpr(t *testing.T) {
	cases := []struct {
		name         string
		kind         InteractionKind
		minutes      int
		wantPath     string
		wantsMinutes bool
	}{
		{"view", InteractionView, 0, "views", false},
		{"snooze", InteractionSnooze, 0, "snoozes", false},
		{"edit", InteractionEdit, 0, "edits", false},
		{"complete with duration", InteractionComplete, 45, "completion_minutes", true},
	}
	for _, c := range cases {
		expr, wantsMinutes, err := trackExpr(c.kind, c.minutes)
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if !strings.Contains(expr, "{"+c.wantPath+"}") {
			t.Errorf("%s: expression does not target %s: %s", c.name, c.wantPath, expr)
		}
		if wantsMinutes != c.wantsMinutes {
			t.Errorf("%s: wantsMinutes: want %v, got %v", c.name, c.wantsMinutes, wantsMinutes)
		}
	}
}

func TestTrackExprCompleteWithoutDuration(t *testing.T) {
	expr, wantsMinutes, err := trackExpr(InteractionComplete, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "interactions" {
		t.Errorf("want the untouched column, got %s", expr)
	}
	if wantsMinutes {
		t.Error("no duration recorded, nothing should consume the minutes argument")
	}
	if strings.Contains(expr, "completion_minutes") {
		t.Errorf("completion_minutes must not be written: %s", expr)
	}
}

func TestTrackExprUnknownKind(t *testing.T) {
	if _, _, err := trackExpr("poke", 0); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}
