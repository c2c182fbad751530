package models

import "testing"

func TestCommentStatusString(t *testing.T) {
	cases := []struct {
		status CommentStatus
		want   string
	}{
		{StatusNotReviewed, "not_reviewed"},
		{StatusApproved, "approved"},
		{StatusRejected, "rejected"},
		{CommentStatus(9), "unknown"},
	}
	for _, c := range cases {
		if got := c.status.String(); got != c.want {
			t.Errorf("CommentStatus(%d).String() = %q, want %q", c.status, got, c.want)
		}
	}
}

func TestCommentStatusTerminal(t *testing.T) {
	if StatusNotReviewed.Terminal() {
		t.Error("not_reviewed must allow further transitions")
	}
	if !StatusApproved.Terminal() || !StatusRejected.Terminal() {
		t.Error("approved and rejected are final states")
	}
}
