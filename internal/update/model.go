// Package update is the bubbletea front end: it owns view state and turns
// key presses and palette commands into calls on the scheduler service.
package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/summary"
)

type View string

const (
	ViewSchedule View = "Schedule"
	ViewNext     View = "Next"
	ViewSummary  View = "Summary"
	ViewWeek     View = "Week"
)

const (
	defaultAdaptInterval = time.Hour
	maxNotifications     = 40
)

// Service is the part of app.Container the TUI drives.
type Service interface {
	AddTask(ctx context.Context, name string, deadline time.Time, tag string, estimatedTime, sections int) (model.Task, error)
	AddClass(ctx context.Context, name string, days []string, start, end model.ClockTime) (model.ClassSchedule, error)
	SetWorkingHours(ctx context.Context, day string, start, end model.ClockTime) (model.WorkingHours, error)
	CompleteTask(ctx context.Context, name string, actualTime int) (model.HistoryEntry, error)
	MaybeAdapt(ctx context.Context) (bool, error)

	Schedule(date model.Date, prefs model.Preferences) []scheduler.Entry
	NextTask(prefs model.Preferences, energy model.EnergyTier) (model.Task, bool, error)
	SuggestEnergy() model.EnergyTier
	DailySummary(date model.Date) summary.Daily
	WeeklySummary(start model.Date) summary.Weekly
	TasksForDate(date model.Date) []model.Task
	ClassesForDay(day time.Weekday) []model.ClassSchedule

	Preferences(tag string, priority float64, estimatedTime int) model.Preferences
	TaskDefaults() (string, int)
	Today() model.Date
	Location() *time.Location
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Schedule string
	Next     string
	Summary  string
	Week     string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// NextState is the last answer to "what should I work on now". An empty
// Energy means the learner picks.
type NextState struct {
	Energy    model.EnergyTier
	Resolved  model.EnergyTier
	Task      model.Task
	Found     bool
	Suggested bool
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	CurrentView   View
	Date          model.Date
	WeekStart     model.Date
	Schedule      []scheduler.Entry
	DueToday      []model.Task
	ClassesToday  []model.ClassSchedule
	Next          NextState
	Daily         summary.Daily
	Weekly        summary.Weekly
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	svc           Service
	ctx           context.Context
	adaptInterval time.Duration

	scheduleTable table.Model
	commandInput  textinput.Model
	blockProgress progress.Model
	helpModel     help.Model
	weekViewport  viewport.Model
}

type Options struct {
	// AdaptInterval is how often the learner is asked whether it is due. Zero means hourly.
	AdaptInterval time.Duration
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type AdaptTickMsg struct{}

func NewModel(ctx context.Context, svc Service, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.AdaptInterval <= 0 {
		opts.AdaptInterval = defaultAdaptInterval
	}
	today := svc.Today()
	m := Model{
		CurrentView:   ViewSchedule,
		Date:          today,
		WeekStart:     model.MostRecentMonday(today),
		svc:           svc,
		ctx:           ctx,
		adaptInterval: opts.AdaptInterval,
		Keys: GlobalKeyMap{
			Schedule: "1",
			Next:     "2",
			Summary:  "3",
			Week:     "4",
			Help:     "?",
			Quit:     "q",
		},
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}
