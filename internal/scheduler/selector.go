package scheduler

import (
	"fmt"
	"sort"

	"github.com/sandeepkv93/dayplan/internal/learner"
	"github.com/sandeepkv93/dayplan/internal/model"
)

// currentEnergy stands in for a real reading of the person's energy level.
// TODO: sample this from recent completion history instead of returning medium.
func currentEnergy() model.EnergyTier {
	return model.EnergyMedium
}

// NextTask picks the best unfinished task for energy. When no task matches that
// tier, less demanding tiers are tried from low upward.
func (e *Engine) NextTask(prefs model.Preferences, energy model.EnergyTier) (model.Task, bool, error) {
	if !energy.IsValid() {
		return model.Task{}, false, fmt.Errorf("%w: %q", model.ErrUnknownEnergyTier, string(energy))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	unfinished := make([]model.Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		if !t.Finished {
			unfinished = append(unfinished, t)
		}
	}
	if len(unfinished) == 0 {
		return model.Task{}, false, nil
	}

	sort.SliceStable(unfinished, func(i, j int) bool {
		a, b := unfinished[i], unfinished[j]
		if !a.Deadline.Equal(b.Deadline) {
			return a.Deadline.Before(b.Deadline)
		}
		return a.Priority > b.Priority
	})

	eligible := withEnergy(unfinished, energy)
	if len(eligible) == 0 {
		for _, lower := range model.EnergyTiers[:energy.Index()] {
			eligible = withEnergy(unfinished, lower)
			if len(eligible) > 0 {
				e.logger.Debug("energy fallback", "requested", energy, "used", lower)
				break
			}
		}
	}
	if len(eligible) == 0 {
		return model.Task{}, false, nil
	}

	ranked := e.recommender.Rank(eligible, prefs)
	if len(ranked) > 0 {
		return ranked[0].Task, true, nil
	}
	return eligible[0], true, nil
}

// SuggestEnergy asks the learner which tier to work at given the active task count.
func (e *Engine) SuggestEnergy() model.EnergyTier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.learner.SelectAction(learner.StateKey(len(e.tasks), currentEnergy()))
}

func withEnergy(tasks []model.Task, tier model.EnergyTier) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Energy() == tier {
			out = append(out, t)
		}
	}
	return out
}
