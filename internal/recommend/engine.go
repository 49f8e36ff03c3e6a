// Package recommend ranks tasks against a preference vector by blending
// content similarity, deadline urgency and task priority.
package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// UrgencyEpsilon guards the urgency term the same way model.PriorityEpsilon guards
// priority. The two are kept as separate constants.
const UrgencyEpsilon = 0.000000001

const (
	similarityWeight = 0.4
	urgencyWeight    = 0.3
	priorityWeight   = 0.3
)

type Ranked struct {
	Task  model.Task
	Score float64
}

// Engine is not safe for concurrent use; the scheduler serializes access to it.
type Engine struct {
	tags     *TagRegistry
	defaults model.Preferences
	clock    model.Clock
	loc      *time.Location
}

func NewEngine(clock model.Clock, loc *time.Location, initialTags ...string) *Engine {
	if clock == nil {
		clock = model.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		tags:     NewTagRegistry(initialTags...),
		defaults: model.DefaultPreferences(),
		clock:    clock,
		loc:      loc,
	}
}

func (e *Engine) Tags() *TagRegistry {
	return e.tags
}

func (e *Engine) Defaults() model.Preferences {
	return e.defaults
}

func (e *Engine) SetDefaults(p model.Preferences) {
	e.defaults = p.WithDefaults(model.DefaultPreferences())
}

// SetDefaultEstimatedTime is how the preference learner feeds back into ranking.
func (e *Engine) SetDefaultEstimatedTime(minutes int) {
	if minutes > 0 {
		e.defaults.EstimatedTime = minutes
	}
}

// Rank scores tasks against prefs and sorts them best first. Ties keep input order.
// Tags seen here are folded into the registry permanently.
func (e *Engine) Rank(tasks []model.Task, prefs model.Preferences) []Ranked {
	if len(tasks) == 0 {
		return []Ranked{}
	}

	vocab := vocabulary(tasks)
	e.tags.Observe(vocab...)

	prefs = prefs.WithDefaults(e.defaults)
	prefVec := featureVector(vocab, prefs.Tag, prefs.Priority, float64(prefs.EstimatedTime))

	now := e.clock.Now()
	out := make([]Ranked, 0, len(tasks))
	for _, task := range tasks {
		taskVec := featureVector(vocab, task.Tag, task.Priority, float64(task.EstimatedTime))
		similarity := cosine(taskVec, prefVec)
		score := similarity*similarityWeight +
			e.urgency(task, now)*urgencyWeight +
			task.Priority*priorityWeight
		out = append(out, Ranked{Task: task, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (e *Engine) urgency(task model.Task, now time.Time) float64 {
	days := float64(model.DaysLeft(task.Deadline, now, e.loc))
	if days <= 0 {
		days = UrgencyEpsilon
	}
	return 1 / days
}

// vocabulary lists the distinct tags of tasks in first-seen order.
func vocabulary(tasks []model.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task.Tag]; ok {
			continue
		}
		seen[task.Tag] = struct{}{}
		out = append(out, task.Tag)
	}
	return out
}

// featureVector is a one-hot over vocab followed by [priority, minutes].
func featureVector(vocab []string, tag string, priority, minutes float64) []float64 {
	vec := make([]float64, 0, len(vocab)+2)
	for _, v := range vocab {
		if v == tag {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}
	return append(vec, priority, minutes)
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
