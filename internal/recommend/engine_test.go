package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(model.NewFixedClock(testNow), time.UTC, "reading", "writing", "project")
}

func mustTask(t *testing.T, name string, daysOut int, tag string, minutes int) model.Task {
	t.Helper()
	task, err := model.NewTask(name, testNow.AddDate(0, 0, daysOut), tag, minutes, 1, testNow, time.UTC)
	require.NoError(t, err)
	return task
}

func TestRank_EmptyInput(t *testing.T) {
	e := newTestEngine()
	out := e.Rank(nil, model.Preferences{})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRank_ScoresAndOrder(t *testing.T) {
	e := newTestEngine()
	a := mustTask(t, "A", 1, "project", 120)
	b := mustTask(t, "B", 10, "reading", 30)

	out := e.Rank([]model.Task{b, a}, model.Preferences{Tag: "project"})
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Task.Name)
	assert.Equal(t, "B", out[1].Task.Name)

	// A: priority 0.5 + 60 = 60.5, urgency 1.
	prefVec := []float64{0, 1, 1, 60} // vocab order is [reading, project]
	aVec := []float64{0, 1, 60.5, 120}
	wantA := cosine(aVec, prefVec)*0.4 + 1*0.3 + 60.5*0.3
	assert.InDelta(t, wantA, out[0].Score, 1e-9)
}

func TestRank_StableOnTies(t *testing.T) {
	e := newTestEngine()
	first := mustTask(t, "first", 3, "reading", 45)
	second := mustTask(t, "second", 3, "reading", 45)
	third := mustTask(t, "third", 3, "reading", 45)

	out := e.Rank([]model.Task{first, second, third}, model.Preferences{})
	require.Len(t, out, 3)
	assert.Equal(t, []string{"first", "second", "third"}, names(out))

	out = e.Rank([]model.Task{third, first, second}, model.Preferences{})
	assert.Equal(t, []string{"third", "first", "second"}, names(out))
}

func TestRank_OverdueUrgencyIsFinite(t *testing.T) {
	e := newTestEngine()
	overdue := mustTask(t, "late", -2, "writing", 20)
	out := e.Rank([]model.Task{overdue}, model.Preferences{})
	require.Len(t, out, 1)
	assert.False(t, math.IsInf(out[0].Score, 0))
	assert.False(t, math.IsNaN(out[0].Score))
	assert.Greater(t, out[0].Score, 1e8)
}

func TestRank_FoldsTagsIntoRegistry(t *testing.T) {
	e := newTestEngine()
	require.False(t, e.Tags().Contains("lab"))
	e.Rank([]model.Task{mustTask(t, "L", 2, "lab", 50)}, model.Preferences{})
	assert.True(t, e.Tags().Contains("lab"))
	assert.Equal(t, []string{"reading", "writing", "project", "lab"}, e.Tags().Known())
}

func TestRank_UsesDefaultsForMissingPreferences(t *testing.T) {
	e := newTestEngine()
	short := mustTask(t, "short", 5, "reading", 30)
	long := mustTask(t, "long", 5, "reading", 30)
	long.EstimatedTime = 120 // same priority, different length

	e.SetDefaultEstimatedTime(30)
	out := e.Rank([]model.Task{long, short}, model.Preferences{})
	assert.Equal(t, 30, e.Defaults().EstimatedTime)
	simShort := cosine([]float64{1, short.Priority, 30}, []float64{0, 1, 30})
	assert.InDelta(t, simShort*0.4+0.2*0.3+short.Priority*0.3, scoreOf(out, "short"), 1e-9)
}

func TestCosineZeroMagnitude(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 2}))
}

func names(in []Ranked) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		out = append(out, r.Task.Name)
	}
	return out
}

func scoreOf(in []Ranked, name string) float64 {
	for _, r := range in {
		if r.Task.Name == name {
			return r.Score
		}
	}
	return math.NaN()
}
