package request

import "testing"

func TestEvaluateQuota(t *testing.T) {
	cases := []struct {
		name     string
		newCount int
		want     Signal
	}{
		{"far below threshold", 1, SignalContinue},
		{"just below threshold", 7, SignalContinue},
		{"at warn threshold", 8, SignalWarn},
		{"inside warn band", 9, SignalWarn},
		{"at quota max", 10, SignalClose},
		{"past quota max", 11, SignalClose},
		{"zero", 0, SignalContinue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateQuota(tc.newCount, DefaultQuotaMax, DefaultWarnThreshold)
			if got != tc.want {
				t.Errorf("EvaluateQuota(%d) = %s, want %s", tc.newCount, got, tc.want)
			}
		})
	}
}

func TestEvaluateQuotaCustomThresholds(t *testing.T) {
	if got := EvaluateQuota(3, 5, 3); got != SignalWarn {
		t.Errorf("EvaluateQuota(3, 5, 3) = %s, want warn", got)
	}
	if got := EvaluateQuota(5, 5, 3); got != SignalClose {
		t.Errorf("EvaluateQuota(5, 5, 3) = %s, want close", got)
	}
	if got := EvaluateQuota(2, 5, 3); got != SignalContinue {
		t.Errorf("EvaluateQuota(2, 5, 3) = %s, want continue", got)
	}
}

func TestShouldReopen(t *testing.T) {
	cases := []struct {
		name     string
		status   Status
		newCount int
		want     bool
	}{
		{"closed and below max", StatusQuotaReached, 9, true},
		{"closed and still at max", StatusQuotaReached, 10, false},
		{"open request never reopens", StatusPublished, 5, false},
		{"awarded request never reopens", StatusAwarded, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldReopen(tc.status, tc.newCount, DefaultQuotaMax); got != tc.want {
				t.Errorf("ShouldReopen(%s, %d) = %v, want %v", tc.status, tc.newCount, got, tc.want)
			}
		})
	}
}

func TestAwardable(t *testing.T) {
	awardable := []Status{StatusPublished, StatusMatched, StatusQuotaReached}
	for _, s := range awardable {
		if !s.Awardable() {
			t.Errorf("%s should be awardable", s)
		}
	}
	for _, s := range []Status{StatusDraft, StatusAwarded} {
		if s.Awardable() {
			t.Errorf("%s should not be awardable", s)
		}
	}
}
