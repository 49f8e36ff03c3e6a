package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/views"
)

const paneInnerWidth = 54

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Start", Width: 6},
		{Title: "End", Width: 6},
		{Title: "Kind", Width: 8},
		{Title: "Name", Width: 20},
		{Title: "Min", Width: 5},
	}
	m.scheduleTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.blockProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	m.helpModel = help.New()
	m.weekViewport = viewport.New(paneInnerWidth, 16)
}

// refresh re-reads everything the views show from the service. Called after
// every mutation and navigation.
func (m *Model) refresh() {
	prefs := m.svc.Preferences("", 0, 0)
	m.Schedule = m.svc.Schedule(m.Date, prefs)
	m.DueToday = m.svc.TasksForDate(m.Date)
	m.ClassesToday = m.svc.ClassesForDay(m.Date.Weekday())
	m.Daily = m.svc.DailySummary(m.Date)
	m.Weekly = m.svc.WeeklySummary(m.WeekStart)
	m.refreshNext(prefs)
	m.syncBubbleData()
}

func (m *Model) refreshNext(prefs model.Preferences) {
	energy := m.Next.Energy
	suggested := energy == ""
	resolved := energy
	if suggested {
		resolved = m.svc.SuggestEnergy()
	}
	task, ok, err := m.svc.NextTask(prefs, resolved)
	if err != nil {
		m.setError(err)
		return
	}
	m.Next = NextState{Energy: energy, Resolved: resolved, Task: task, Found: ok, Suggested: suggested}
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Schedule))
	for _, e := range m.Schedule {
		name := e.Name
		if e.Kind == scheduler.KindWorkingHours {
			name = fmt.Sprintf("%d task(s)", len(e.Tasks))
		}
		rows = append(rows, table.Row{e.Start.String(), e.End.String(), kindLabel(e.Kind), name, fmt.Sprintf("%d", e.Duration)})
	}
	m.scheduleTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}

	m.weekViewport.SetContent(views.RenderMarkdown(views.WeekMarkdown(m.weekData()), paneInnerWidth))
}

func kindLabel(k scheduler.EntryKind) string {
	if k == scheduler.KindWorkingHours {
		return "WORK"
	}
	return strings.ToUpper(string(k))
}

// blockUsed is the share of the day's working block already spent on finished tasks.
func (m Model) blockUsed() (float64, bool) {
	for _, e := range m.Schedule {
		if e.Kind != scheduler.KindWorkingHours || e.Duration <= 0 {
			continue
		}
		used := float64(m.Daily.TotalStudyTime) / float64(e.Duration)
		if used > 1 {
			used = 1
		}
		return used, true
	}
	return 0, false
}
