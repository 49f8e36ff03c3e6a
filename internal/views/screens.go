package views

import (
	"fmt"
	"strings"
)

type ScheduledTaskData struct {
	Name          string
	Deadline      string
	EstimatedTime int
	ActualTime    int
	Score         float64
	Finished      bool
}

type ScheduleEntryData struct {
	Kind     string
	Name     string
	Start    string
	End      string
	Duration int
	Tasks    []ScheduledTaskData
}

type SchedulePanelData struct {
	Date      string
	TableView string
	Entries   []ScheduleEntryData
}

type NextPanelData struct {
	Energy        string
	Suggested     bool
	Found         bool
	Name          string
	Deadline      string
	Tag           string
	EstimatedTime int
	Tier          string
}

type SummaryTaskData struct {
	Name           string
	TimeSpent      int
	EstimatedTime  int
	CompletionTime string
}

type SummaryPanelData struct {
	Date            string
	TotalStudyTime  int
	CompletedTasks  int
	AverageTaskTime int
	OverdueTasks    int
	ProgressView    string
	Tasks           []SummaryTaskData
}

type WeekDayData struct {
	Date           string
	Weekday        string
	CompletedTasks int
	StudyTime      int
	ClassTime      int
}

type WeekTaskData struct {
	Name          string
	CompletedDate string
	ActualTime    int
	EstimatedTime int
}

type WeekData struct {
	StartDate      string
	EndDate        string
	TotalStudyTime int
	CompletedTasks int
	Days           []WeekDayData
	Tasks          []WeekTaskData
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderSchedulePanel(data SchedulePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("schedule: %s\n", data.Date))
	b.WriteString("actions: [h/l]day [t]today [/]command\n")
	if len(data.Entries) == 0 {
		b.WriteString("(nothing scheduled)")
		return b.String()
	}
	b.WriteString(data.TableView + "\n")
	for _, e := range data.Entries {
		if len(e.Tasks) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s-%s tasks:\n", e.Start, e.End))
		for _, t := range e.Tasks {
			mark := " "
			minutes := t.EstimatedTime
			if t.Finished {
				mark = "x"
				minutes = t.ActualTime
			}
			b.WriteString(fmt.Sprintf("[%s] %s %dm due:%s score:%.2f\n", mark, t.Name, minutes, t.Deadline, t.Score))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderNextPanel(data NextPanelData) string {
	var b strings.Builder
	b.WriteString("next:\n")
	energy := data.Energy
	if data.Suggested {
		energy += " (suggested)"
	}
	b.WriteString(fmt.Sprintf("energy: %s\n", energy))
	b.WriteString("actions: [e]cycle energy [a]auto\n")
	if !data.Found {
		b.WriteString("(no task fits this energy)")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("task: %s\n", data.Name))
	b.WriteString(fmt.Sprintf("due: %s\n", data.Deadline))
	b.WriteString(fmt.Sprintf("tag: %s\n", data.Tag))
	b.WriteString(fmt.Sprintf("estimate: %dm [%s]", data.EstimatedTime, data.Tier))
	return b.String()
}

func RenderSummaryPanel(data SummaryPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("summary: %s\n", data.Date))
	b.WriteString(fmt.Sprintf("study time: %dm\n", data.TotalStudyTime))
	b.WriteString(fmt.Sprintf("completed: %d (avg %dm)\n", data.CompletedTasks, data.AverageTaskTime))
	b.WriteString(fmt.Sprintf("overdue: %d\n", data.OverdueTasks))
	if data.ProgressView != "" {
		b.WriteString("block used: " + data.ProgressView + "\n")
	}
	for _, t := range data.Tasks {
		b.WriteString(fmt.Sprintf("- %s %dm/%dm @%s\n", t.Name, t.TimeSpent, t.EstimatedTime, t.CompletionTime))
	}
	return strings.TrimSpace(b.String())
}

// WeekMarkdown lays the weekly summary out as markdown for RenderMarkdown.
func WeekMarkdown(data WeekData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Week %s to %s\n\n", data.StartDate, data.EndDate))
	b.WriteString(fmt.Sprintf("**%d** tasks, **%d** minutes studied.\n\n", data.CompletedTasks, data.TotalStudyTime))
	b.WriteString("| Day | Date | Tasks | Study | Class |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, d := range data.Days {
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %dm | %dm |\n", d.Weekday, d.Date, d.CompletedTasks, d.StudyTime, d.ClassTime))
	}
	if len(data.Tasks) > 0 {
		b.WriteString("\n## Completed\n\n")
		for _, t := range data.Tasks {
			b.WriteString(fmt.Sprintf("- %s: *%s* %dm of %dm\n", t.CompletedDate, t.Name, t.ActualTime, t.EstimatedTime))
		}
	}
	return b.String()
}

func RenderWeekPanel(viewportView string) string {
	return "week:\nactions: [h/l]week [j/k]scroll\n" + viewportView
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
