package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	return adaptTickCmd(m.adaptInterval)
}

func adaptTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg { return AdaptTickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.Status = StatusBar{Text: "command palette active"}
			m.syncBubbleData()
			return m, nil
		case m.Keys.Schedule:
			m.CurrentView = ViewSchedule
			return m, nil
		case m.Keys.Next:
			m.CurrentView = ViewNext
			return m, nil
		case m.Keys.Summary:
			m.CurrentView = ViewSummary
			return m, nil
		case m.Keys.Week:
			m.CurrentView = ViewWeek
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleViewKey(typed)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.setError(typed.Err)
		return m, nil
	case AdaptTickMsg:
		adapted, err := m.svc.MaybeAdapt(m.ctx)
		switch {
		case err != nil:
			m.setError(err)
		case adapted:
			m.Status = StatusBar{Text: "learner adapted preferences"}
			m.notify("Adapt", "preferences re-tuned from learned energy values", "info")
			m.refresh()
		}
		return m, adaptTickCmd(m.adaptInterval)
	}
	return m, nil
}

func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.CurrentView {
	case ViewSchedule, ViewSummary:
		switch msg.String() {
		case "h", "left":
			m.Date = m.Date.AddDays(-1)
			m.refresh()
		case "l", "right":
			m.Date = m.Date.AddDays(1)
			m.refresh()
		case "t":
			m.Date = m.svc.Today()
			m.refresh()
		default:
			if m.CurrentView == ViewSchedule {
				var cmd tea.Cmd
				m.scheduleTable, cmd = m.scheduleTable.Update(msg)
				return m, cmd
			}
		}
	case ViewNext:
		switch msg.String() {
		case "e":
			m.Next.Energy = nextTier(m.Next.Energy)
			m.refresh()
		case "a":
			m.Next.Energy = ""
			m.refresh()
		}
	case ViewWeek:
		switch msg.String() {
		case "h", "left":
			m.WeekStart = m.WeekStart.AddDays(-7)
			m.refresh()
		case "l", "right":
			m.WeekStart = m.WeekStart.AddDays(7)
			m.refresh()
		default:
			var cmd tea.Cmd
			m.weekViewport, cmd = m.weekViewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// nextTier cycles auto, low, medium, high.
func nextTier(current model.EnergyTier) model.EnergyTier {
	if current == "" {
		return model.EnergyTiers[0]
	}
	idx := current.Index() + 1
	if idx >= len(model.EnergyTiers) {
		return ""
	}
	return model.EnergyTiers[idx]
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	switch m.CurrentView {
	case ViewSchedule:
		leftPane = m.renderScheduleView()
	case ViewNext:
		leftPane = m.renderNextView()
	case ViewSummary:
		leftPane = m.renderSummaryView()
	case ViewWeek:
		leftPane = views.RenderWeekPanel(m.weekViewport.View())
	}
	rightPane := strings.TrimSpace(m.renderCommandPalette() + "\n" + m.renderHelpIfVisible())

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dayplan | view: %s | today: %s", m.CurrentView, m.svc.Today()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s schedule | %s next | %s summary | %s week | / cmd | %s help | %s quit",
			m.Keys.Schedule, m.Keys.Next, m.Keys.Summary, m.Keys.Week, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewSchedule, ViewNext, ViewSummary, ViewWeek:
		return true
	default:
		return false
	}
}
