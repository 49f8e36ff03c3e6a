package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/dayplan/internal/views"
)

func (m Model) renderScheduleView() string {
	entries := make([]views.ScheduleEntryData, 0, len(m.Schedule))
	for _, e := range m.Schedule {
		data := views.ScheduleEntryData{
			Kind:     string(e.Kind),
			Name:     e.Name,
			Start:    e.Start.String(),
			End:      e.End.String(),
			Duration: e.Duration,
		}
		for _, t := range e.Tasks {
			td := views.ScheduledTaskData{
				Name:          t.Name,
				Deadline:      t.Deadline.String(),
				EstimatedTime: t.EstimatedTime,
				Score:         t.Score,
				Finished:      t.Finished,
			}
			if t.ActualTime != nil {
				td.ActualTime = *t.ActualTime
			}
			data.Tasks = append(data.Tasks, td)
		}
		entries = append(entries, data)
	}
	out := views.RenderSchedulePanel(views.SchedulePanelData{
		Date:      fmt.Sprintf("%s %s", m.Date, m.Date.Weekday()),
		TableView: m.scheduleTable.View(),
		Entries:   entries,
	})

	var b strings.Builder
	if len(m.ClassesToday) > 0 {
		names := make([]string, 0, len(m.ClassesToday))
		for _, c := range m.ClassesToday {
			names = append(names, c.Name)
		}
		b.WriteString("\nclasses: " + strings.Join(names, ", "))
	}
	if len(m.DueToday) > 0 {
		names := make([]string, 0, len(m.DueToday))
		for _, t := range m.DueToday {
			names = append(names, t.Name)
		}
		b.WriteString("\ndue: " + strings.Join(names, ", "))
	}
	return out + b.String()
}

func (m Model) renderNextView() string {
	data := views.NextPanelData{
		Energy:    string(m.Next.Resolved),
		Suggested: m.Next.Suggested,
		Found:     m.Next.Found,
	}
	if m.Next.Found {
		t := m.Next.Task
		data.Name = t.Name
		data.Deadline = t.DeadlineDate(m.svc.Location()).String()
		data.Tag = t.Tag
		data.EstimatedTime = t.EstimatedTime
		data.Tier = string(t.Energy())
	}
	return views.RenderNextPanel(data)
}

func (m Model) renderSummaryView() string {
	d := m.Daily
	data := views.SummaryPanelData{
		Date:            d.Date.String(),
		TotalStudyTime:  d.TotalStudyTime,
		CompletedTasks:  d.CompletedTasks,
		AverageTaskTime: d.AverageTaskTime,
		OverdueTasks:    d.OverdueTasks,
	}
	if used, ok := m.blockUsed(); ok {
		data.ProgressView = m.blockProgress.ViewAs(used)
	}
	for _, t := range d.Tasks {
		data.Tasks = append(data.Tasks, views.SummaryTaskData{
			Name:           t.Name,
			TimeSpent:      t.TimeSpent,
			EstimatedTime:  t.EstimatedTime,
			CompletionTime: t.CompletionTime.String(),
		})
	}
	return views.RenderSummaryPanel(data)
}

func (m Model) weekData() views.WeekData {
	w := m.Weekly
	data := views.WeekData{
		StartDate:      w.StartDate.String(),
		EndDate:        w.EndDate.String(),
		TotalStudyTime: w.TotalStudyTime,
		CompletedTasks: w.CompletedTasks,
	}
	for _, d := range w.DailyBreakdown {
		data.Days = append(data.Days, views.WeekDayData{
			Date:           d.Date.String(),
			Weekday:        d.Date.Weekday().String()[:3],
			CompletedTasks: d.CompletedTasks,
			StudyTime:      d.StudyTime,
			ClassTime:      d.ClassTime,
		})
	}
	for _, t := range w.TaskDetails {
		data.Tasks = append(data.Tasks, views.WeekTaskData{
			Name:          t.Name,
			CompletedDate: t.CompletedDate.String(),
			ActualTime:    t.ActualTime,
			EstimatedTime: t.EstimatedTime,
		})
	}
	return data
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return views.RenderCommandPalette(true, m.commandInput.Value())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m *Model) setError(err error) {
	m.LastError = err
	if err == nil {
		return
	}
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.notify("Error", err.Error(), "error")
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
