// Package summary computes completed-task statistics from task history.
package summary

import (
	"math"
	"sort"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const daysPerWeek = 7

type TaskDetail struct {
	Name           string          `json:"name"`
	TimeSpent      int             `json:"time_spent"`
	EstimatedTime  int             `json:"estimated_time"`
	CompletionTime model.ClockTime `json:"completion_time"`
}

type Daily struct {
	Date            model.Date   `json:"date"`
	TotalStudyTime  int          `json:"total_study_time"`
	CompletedTasks  int          `json:"completed_tasks"`
	AverageTaskTime int          `json:"average_task_time"`
	OverdueTasks    int          `json:"overdue_tasks"`
	Tasks           []TaskDetail `json:"tasks"`
}

type DayStats struct {
	Date           model.Date `json:"date"`
	CompletedTasks int        `json:"completed_tasks"`
	StudyTime      int        `json:"study_time"`
	ClassTime      int        `json:"class_time"`
}

type WeeklyTask struct {
	Name          string     `json:"name"`
	CompletedDate model.Date `json:"completed_date"`
	ActualTime    int        `json:"actual_time"`
	EstimatedTime int        `json:"estimated_time"`
}

type Weekly struct {
	StartDate      model.Date   `json:"start_date"`
	EndDate        model.Date   `json:"end_date"`
	TotalStudyTime int          `json:"total_study_time"`
	CompletedTasks int          `json:"completed_tasks"`
	DailyBreakdown []DayStats   `json:"daily_breakdown"`
	TaskDetails    []WeeklyTask `json:"task_details"`
}

// ForDay summarizes history completed on date. Overdue counts active tasks whose
// deadline day is before date.
func ForDay(date model.Date, history []model.HistoryEntry, active []model.Task, loc *time.Location) Daily {
	out := Daily{Date: date, Tasks: make([]TaskDetail, 0)}
	for _, h := range history {
		if h.CompletedDate != date {
			continue
		}
		out.TotalStudyTime += h.ActualTime
		out.Tasks = append(out.Tasks, TaskDetail{
			Name:           h.Name,
			TimeSpent:      h.ActualTime,
			EstimatedTime:  h.EstimatedTime,
			CompletionTime: h.CompletedAt,
		})
	}
	out.CompletedTasks = len(out.Tasks)
	if out.CompletedTasks > 0 {
		out.AverageTaskTime = int(math.RoundToEven(float64(out.TotalStudyTime) / float64(out.CompletedTasks)))
	}
	for _, t := range active {
		if !t.Finished && t.DeadlineDate(loc).Before(date) {
			out.OverdueTasks++
		}
	}
	return out
}

// ForWeek summarizes the seven days starting at start, inclusive.
func ForWeek(start model.Date, history []model.HistoryEntry, classes []model.ClassSchedule) Weekly {
	end := start.AddDays(daysPerWeek - 1)
	out := Weekly{
		StartDate:      start,
		EndDate:        end,
		DailyBreakdown: make([]DayStats, 0, daysPerWeek),
		TaskDetails:    make([]WeeklyTask, 0),
	}

	inWeek := make([]model.HistoryEntry, 0)
	for _, h := range history {
		if h.CompletedDate.Before(start) || h.CompletedDate.After(end) {
			continue
		}
		inWeek = append(inWeek, h)
		out.TotalStudyTime += h.ActualTime
		out.TaskDetails = append(out.TaskDetails, WeeklyTask{
			Name:          h.Name,
			CompletedDate: h.CompletedDate,
			ActualTime:    h.ActualTime,
			EstimatedTime: h.EstimatedTime,
		})
	}
	out.CompletedTasks = len(out.TaskDetails)

	for day := start; !day.After(end); day = day.AddDays(1) {
		stats := DayStats{Date: day}
		for _, h := range inWeek {
			if h.CompletedDate == day {
				stats.CompletedTasks++
				stats.StudyTime += h.ActualTime
			}
		}
		for _, c := range classes {
			if c.MeetsOn(day.Weekday()) {
				stats.ClassTime += c.Minutes()
			}
		}
		out.DailyBreakdown = append(out.DailyBreakdown, stats)
	}

	sort.SliceStable(out.TaskDetails, func(i, j int) bool {
		return out.TaskDetails[i].CompletedDate.Before(out.TaskDetails[j].CompletedDate)
	})
	return out
}
