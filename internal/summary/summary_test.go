package summary

import (
	"testing"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = model.NewDate(2026, 2, 9)

func entry(name string, day model.Date, actual, estimate int, at string) model.HistoryEntry {
	clock, _ := model.ParseClockTime(at)
	return model.HistoryEntry{
		Name:          name,
		Deadline:      day.AddDays(2).In(time.UTC),
		Tag:           "reading",
		EstimatedTime: estimate,
		ActualTime:    actual,
		CompletedDate: day,
		CompletedAt:   clock,
	}
}

func TestForDay(t *testing.T) {
	history := []model.HistoryEntry{
		entry("a", monday, 25, 30, "09:10"),
		entry("b", monday, 50, 45, "11:00"),
		entry("c", monday.AddDays(1), 90, 90, "15:00"),
	}
	overdue := model.Task{Name: "late", Deadline: monday.AddDays(-1).In(time.UTC), EstimatedTime: 20, Sections: 1}
	upcoming := model.Task{Name: "soon", Deadline: monday.AddDays(3).In(time.UTC), EstimatedTime: 20, Sections: 1}

	got := ForDay(monday, history, []model.Task{overdue, upcoming}, time.UTC)
	assert.Equal(t, 2, got.CompletedTasks)
	assert.Equal(t, 75, got.TotalStudyTime)
	assert.Equal(t, 38, got.AverageTaskTime) // 37.5 rounds half to even
	assert.Equal(t, 1, got.OverdueTasks)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "09:10", got.Tasks[0].CompletionTime.String())
}

func TestForDay_Empty(t *testing.T) {
	got := ForDay(monday, nil, nil, time.UTC)
	assert.Equal(t, 0, got.AverageTaskTime)
	assert.NotNil(t, got.Tasks)
	assert.Empty(t, got.Tasks)
}

func TestForWeek_BreakdownSumsToTotal(t *testing.T) {
	history := []model.HistoryEntry{
		entry("late-sunday", monday.AddDays(6), 40, 30, "20:00"),
		entry("mon", monday, 30, 30, "10:00"),
		entry("wed-1", monday.AddDays(2), 15, 20, "08:00"),
		entry("wed-2", monday.AddDays(2), 60, 45, "18:00"),
		entry("next-week", monday.AddDays(7), 100, 100, "10:00"),
		entry("last-week", monday.AddDays(-1), 100, 100, "10:00"),
	}
	start, _ := model.ParseClockTime("10:00")
	end, _ := model.ParseClockTime("11:15")
	class := model.ClassSchedule{Name: "Algorithms", Days: []time.Weekday{time.Monday, time.Wednesday}, Interval: model.Interval{Start: start, End: end}}

	got := ForWeek(monday, history, []model.ClassSchedule{class})
	assert.Equal(t, monday, got.StartDate)
	assert.Equal(t, monday.AddDays(6), got.EndDate)
	assert.Equal(t, 145, got.TotalStudyTime)
	assert.Equal(t, 4, got.CompletedTasks)
	require.Len(t, got.DailyBreakdown, 7)

	sum := 0
	for _, d := range got.DailyBreakdown {
		sum += d.StudyTime
	}
	assert.Equal(t, got.TotalStudyTime, sum)
	assert.Equal(t, 75, got.DailyBreakdown[0].ClassTime)
	assert.Equal(t, 0, got.DailyBreakdown[1].ClassTime)
	assert.Equal(t, 2, got.DailyBreakdown[2].CompletedTasks)

	require.Len(t, got.TaskDetails, 4)
	assert.Equal(t, "mon", got.TaskDetails[0].Name)
	assert.Equal(t, "late-sunday", got.TaskDetails[3].Name)
}
