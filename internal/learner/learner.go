// Package learner scores (state, energy action) pairs from task completion
// outcomes and periodically feeds the best-valued energy tier back into ranking.
package learner

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const numActions = 3

// Values holds one estimate per energy action, indexed like model.EnergyTiers.
type Values [numActions]float64

func (v Values) Best() int {
	best := 0
	for i := 1; i < numActions; i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func (v Values) Max() float64 {
	return v[v.Best()]
}

// RandSource is the subset of *rand.Rand the learner draws from.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

type Config struct {
	Epsilon        float64
	LearningRate   float64
	DiscountFactor float64
	// AdaptEveryDays is the minimum gap between adaptation runs; zero means 7.
	AdaptEveryDays int
	// Rand nil means a time-seeded source.
	Rand RandSource
}

func DefaultConfig() Config {
	return Config{
		Epsilon:        0.1,
		LearningRate:   0.1,
		DiscountFactor: 0.95,
		AdaptEveryDays: 7,
	}
}

// PreferenceSink receives the adapted preferred task length.
type PreferenceSink interface {
	SetDefaultEstimatedTime(minutes int)
}

type Learner struct {
	table          map[string]*Values
	order          []string
	epsilon        float64
	learningRate   float64
	discount       float64
	adaptEvery     int
	rng            RandSource
	lastAdaptation model.Date
}

func New(cfg Config, today model.Date) *Learner {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	adaptEvery := cfg.AdaptEveryDays
	if adaptEvery <= 0 {
		adaptEvery = 7
	}
	return &Learner{
		table:          make(map[string]*Values),
		epsilon:        cfg.Epsilon,
		learningRate:   cfg.LearningRate,
		discount:       cfg.DiscountFactor,
		adaptEvery:     adaptEvery,
		rng:            rng,
		lastAdaptation: today,
	}
}

// StateKey joins the remaining active task count with an energy tier.
func StateKey(remaining int, tier model.EnergyTier) string {
	return fmt.Sprintf("%d_%s", remaining, tier)
}

// Reward is +1 when a task took no longer than estimated, else -1.
func Reward(actualTime, estimatedTime int) float64 {
	if actualTime <= estimatedTime {
		return 1
	}
	return -1
}

func (l *Learner) ensure(state string) *Values {
	if v, ok := l.table[state]; ok {
		return v
	}
	v := &Values{}
	l.table[state] = v
	l.order = append(l.order, state)
	return v
}

// SelectAction is epsilon-greedy: a uniform random tier with probability epsilon,
// else the best-valued tier for state with ties going to the lowest index.
func (l *Learner) SelectAction(state string) model.EnergyTier {
	if l.rng.Float64() < l.epsilon {
		return model.EnergyTiers[l.rng.Intn(numActions)]
	}
	return model.EnergyTiers[l.ensure(state).Best()]
}

// Observe applies one Q-learning update.
func (l *Learner) Observe(state string, action model.EnergyTier, reward float64, nextState string) {
	idx := action.Index()
	if idx < 0 {
		return
	}
	current := l.ensure(state)
	next := l.ensure(nextState)
	q := current[idx]
	current[idx] = q + l.learningRate*(reward+l.discount*next.Max()-q)
}

func (l *Learner) Values(state string) (Values, bool) {
	v, ok := l.table[state]
	if !ok {
		return Values{}, false
	}
	return *v, true
}

// States lists known states in the order they were first seen.
func (l *Learner) States() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Learner) LastAdaptation() model.Date {
	return l.lastAdaptation
}

// MaybeAdapt pushes each state's best tier into sink once enough days have passed
// since the last run. States are applied in first-seen order, so the last one wins.
func (l *Learner) MaybeAdapt(today model.Date, sink PreferenceSink) bool {
	if today.DaysSince(l.lastAdaptation) < l.adaptEvery {
		return false
	}
	for _, state := range l.order {
		best := model.EnergyTiers[l.table[state].Best()]
		sink.SetDefaultEstimatedTime(best.Minutes())
	}
	l.lastAdaptation = today
	return true
}

type StateValues struct {
	State  string
	Values Values
}

// State is the persistable form of a Learner.
type State struct {
	Entries        []StateValues
	LastAdaptation model.Date
}

func (l *Learner) Snapshot() State {
	entries := make([]StateValues, 0, len(l.order))
	for _, state := range l.order {
		entries = append(entries, StateValues{State: state, Values: *l.table[state]})
	}
	return State{Entries: entries, LastAdaptation: l.lastAdaptation}
}

// Restore replaces the table. A zero LastAdaptation keeps the current one.
func (l *Learner) Restore(s State) {
	l.table = make(map[string]*Values, len(s.Entries))
	l.order = l.order[:0]
	for _, e := range s.Entries {
		v := e.Values
		if _, dup := l.table[e.State]; !dup {
			l.order = append(l.order, e.State)
		}
		l.table[e.State] = &v
	}
	if !s.LastAdaptation.IsZero() {
		l.lastAdaptation = s.LastAdaptation
	}
}
