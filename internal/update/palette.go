package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m
	}
	m.syncBubbleData()
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.notify("Command", res.Message, "info")
	}
	m.refresh()
	return m
}

// paletteHandlers binds commands to the service. Handlers mutate m through the
// pointer, so the caller must use the same m afterwards.
func (m *Model) paletteHandlers() commands.Handlers {
	return commands.Handlers{
		Task: func(a commands.TaskArgs) (commands.Result, error) {
			tag, est := m.svc.TaskDefaults()
			if a.Tag != "" {
				tag = a.Tag
			}
			if a.EstimatedTime != 0 {
				est = a.EstimatedTime
			}
			task, err := m.svc.AddTask(m.ctx, a.Name, a.Due.In(m.svc.Location()), tag, est, a.Sections)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added task: %s (%dm, priority %.2f)", task.Name, task.EstimatedTime, task.Priority)}, nil
		},
		Class: func(a commands.ClassArgs) (commands.Result, error) {
			class, err := m.svc.AddClass(m.ctx, a.Name, a.Days, a.Start, a.End)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added class: %s %s-%s", class.Name, class.Start, class.End)}, nil
		},
		Work: func(a commands.WorkArgs) (commands.Result, error) {
			wh, err := m.svc.SetWorkingHours(m.ctx, a.Day, a.Start, a.End)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("working hours for %s: %s-%s", wh.Day, wh.Start, wh.End)}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			entry, err := m.svc.CompleteTask(m.ctx, a.Name, a.ActualTime)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("completed %s in %dm at %s", entry.Name, entry.ActualTime, entry.CompletedAt)}, nil
		},
		Next: func(a commands.NextArgs) (commands.Result, error) {
			m.Next.Energy = a.Energy
			m.CurrentView = ViewNext
			label := string(a.Energy)
			if label == "" {
				label = "auto"
			}
			return commands.Result{Message: "next task at energy " + label}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			date := a.Date
			if date.IsZero() {
				date = m.svc.Today()
			}
			switch a.Subject {
			case commands.ShowSchedule:
				m.CurrentView = ViewSchedule
				m.Date = date
			case commands.ShowSummary:
				m.CurrentView = ViewSummary
				m.Date = date
			case commands.ShowWeek:
				m.CurrentView = ViewWeek
				m.WeekStart = model.MostRecentMonday(date)
			}
			return commands.Result{Message: fmt.Sprintf("show %s %s", a.Subject, date)}, nil
		},
		Adapt: func() (commands.Result, error) {
			adapted, err := m.svc.MaybeAdapt(m.ctx)
			if err != nil {
				return commands.Result{}, err
			}
			if !adapted {
				return commands.Result{Message: "adaptation not due yet"}, nil
			}
			return commands.Result{Message: "preferences adapted from learned energy values"}, nil
		},
	}
}
