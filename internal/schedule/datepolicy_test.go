package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var policyNow = time.Date(2024, 4, 30, 15, 30, 0, 0, time.UTC)

func TestTodayIsNeverEnableable(t *testing.T) {
	policy := DatePolicy{LeadDays: 1}
	ok, reason := policy.CanEnableForDate(policyNow, policyNow)
	assert.False(t, ok)
	assert.Contains(t, reason, "2024-04-30")
	assert.Contains(t, reason, "2024-05-01")
}

func TestTomorrowIsEnableableWithDefaultLead(t *testing.T) {
	policy := DatePolicy{LeadDays: 1}
	ok, reason := policy.CanEnableForDate(policyNow.AddDate(0, 0, 1), policyNow)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestPastDatesAreRejected(t *testing.T) {
	policy := DatePolicy{LeadDays: 1}
	ok, _ := policy.CanEnableForDate(policyNow.AddDate(0, 0, -3), policyNow)
	assert.False(t, ok)
}

func TestWiderLeadWindowPushesMinimumOut(t *testing.T) {
	policy := DatePolicy{LeadDays: 3}

	ok, _ := policy.CanEnableForDate(policyNow.AddDate(0, 0, 2), policyNow)
	assert.False(t, ok, "two days out is inside a three-day lead window")

	ok, _ = policy.CanEnableForDate(policyNow.AddDate(0, 0, 3), policyNow)
	assert.True(t, ok)
}

func TestMinimumScheduleDateIsMidnight(t *testing.T) {
	policy := DatePolicy{LeadDays: 1}
	min := policy.MinimumScheduleDate(policyNow)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), min)
}

func TestZeroValuePolicyFallsBackToDefaultLead(t *testing.T) {
	policy := DatePolicy{}
	ok, _ := policy.CanEnableForDate(policyNow, policyNow)
	assert.False(t, ok, "same-day must stay rejected with the zero-value policy")
	assert.Equal(t, policyNow.AddDate(0, 0, 1).Truncate(24*time.Hour), truncateToDay(policy.MinimumScheduleDate(policyNow)))
}

func TestCanEnableIgnoresTimeOfDay(t *testing.T) {
	policy := DatePolicy{LeadDays: 1}
	lateTonight := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)
	earlyTomorrow := time.Date(2024, 5, 1, 0, 0, 1, 0, time.UTC)
	ok, _ := policy.CanEnableForDate(earlyTomorrow, lateTonight)
	assert.True(t, ok)
}
