package httpapi

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type taskResponse struct {
	Name          string           `json:"name"`
	Deadline      model.Date       `json:"deadline"`
	Tag           string           `json:"tag"`
	EstimatedTime int              `json:"estimated_time"`
	Sections      int              `json:"sections"`
	Priority      float64          `json:"priority"`
	EnergyLevel   model.EnergyTier `json:"energy_level"`
}

func (s *Server) toTask(t model.Task) taskResponse {
	return taskResponse{
		Name:          t.Name,
		Deadline:      t.DeadlineDate(s.svc.Location()),
		Tag:           t.Tag,
		EstimatedTime: t.EstimatedTime,
		Sections:      t.Sections,
		Priority:      t.Priority,
		EnergyLevel:   t.Energy(),
	}
}

type classResponse struct {
	Name      string          `json:"name"`
	Days      []string        `json:"days"`
	StartTime model.ClockTime `json:"start_time"`
	EndTime   model.ClockTime `json:"end_time"`
}

type workingHoursResponse struct {
	Day   string          `json:"day"`
	Start model.ClockTime `json:"start"`
	End   model.ClockTime `json:"end"`
}

type preferencesRequest struct {
	Tag           string  `json:"tag"`
	Priority      float64 `json:"priority"`
	EstimatedTime int     `json:"estimated_time"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.svc.Tasks()
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.toTask(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) postTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name          string     `json:"name"`
		Deadline      model.Date `json:"deadline"`
		Tag           string     `json:"tag"`
		EstimatedTime int        `json:"estimated_time"`
		Sections      int        `json:"sections"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	defaultTag, defaultEstimate := s.svc.TaskDefaults()
	if body.Tag == "" {
		body.Tag = defaultTag
	}
	if body.EstimatedTime == 0 {
		body.EstimatedTime = defaultEstimate
	}
	if body.Deadline.IsZero() {
		s.writeError(w, r, fmt.Errorf("%w: deadline is required", model.ErrInvalidTask))
		return
	}

	task, err := s.svc.AddTask(r.Context(), body.Name, body.Deadline.In(s.svc.Location()), body.Tag, body.EstimatedTime, body.Sections)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task added successfully",
		"task":    s.toTask(task),
	})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	if err := s.svc.RemoveTask(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listClasses(w http.ResponseWriter, r *http.Request) {
	classes := s.svc.Classes()
	out := make([]classResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, classResponse{Name: c.Name, Days: c.DayNames(), StartTime: c.Start, EndTime: c.End})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) postClass(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string          `json:"name"`
		Days      []string        `json:"days"`
		StartTime model.ClockTime `json:"start_time"`
		EndTime   model.ClockTime `json:"end_time"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	class, err := s.svc.AddClass(r.Context(), body.Name, body.Days, body.StartTime, body.EndTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Class added successfully",
		"class":   classResponse{Name: class.Name, Days: class.DayNames(), StartTime: class.Start, EndTime: class.End},
	})
}

func (s *Server) listWorkingHours(w http.ResponseWriter, r *http.Request) {
	hours := s.svc.WorkingHours()
	out := make([]workingHoursResponse, 0, len(hours))
	for _, wh := range hours {
		out = append(out, workingHoursResponse{Day: wh.Day.String(), Start: wh.Start, End: wh.End})
	}
	writeJSON(w, http.StatusOK, out)
}

// postWorkingHours takes {"monday": {"start": "09:00", "end": "17:00"}, ...}.
// Every day is validated before any is saved.
func (s *Server) postWorkingHours(w http.ResponseWriter, r *http.Request) {
	var body map[string]struct {
		Start model.ClockTime `json:"start"`
		End   model.ClockTime `json:"end"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(body) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: no days given", errBadRequest))
		return
	}
	blocks := make([]model.WorkingHours, 0, len(body))
	for day, span := range body {
		wh, err := model.NewWorkingHours(day, span.Start, span.End)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%s: %w", day, err))
			return
		}
		blocks = append(blocks, wh)
	}
	slices.SortFunc(blocks, func(a, b model.WorkingHours) int { return int(a.Day) - int(b.Day) })
	for _, wh := range blocks {
		if _, err := s.svc.SetWorkingHours(r.Context(), wh.Day.String(), wh.Start, wh.End); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Work block set successfully"})
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	prefs, err := s.queryPreferences(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Schedule(date, prefs))
}

// postNext answers 204 when no task fits the requested energy or anything below it.
func (s *Server) postNext(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserPreferences preferencesRequest `json:"user_preferences"`
		CurrentEnergy   string             `json:"current_energy"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	var energy model.EnergyTier
	if raw := strings.TrimSpace(body.CurrentEnergy); raw != "" && !strings.EqualFold(raw, "auto") {
		tier, err := model.ParseEnergyTier(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		energy = tier
	}
	p := body.UserPreferences
	task, ok, err := s.svc.NextTask(s.svc.Preferences(p.Tag, p.Priority, p.EstimatedTime), energy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, s.toTask(task))
}

func (s *Server) postComplete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskName      string `json:"task_name"`
		ActualTime    int    `json:"actual_time"`
		CurrentEnergy string `json:"current_energy"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.svc.CompleteTask(r.Context(), body.TaskName, body.ActualTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_info": map[string]any{
			"name":            entry.Name,
			"actual_time":     entry.ActualTime,
			"completion_time": entry.CompletedAt,
		},
	})
}

func (s *Server) getDailySummary(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.DailySummary(date))
}

// getWeeklySummary covers the current week unless ?start= names another day.
func (s *Server) getWeeklySummary(w http.ResponseWriter, r *http.Request) {
	var start model.Date
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := model.ParseDate(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		start = parsed
	}
	writeJSON(w, http.StatusOK, s.svc.WeeklySummary(start))
}

// dateParam reads a YYYY-MM-DD query value, defaulting to today.
func (s *Server) dateParam(r *http.Request, name string) (model.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return s.svc.Today(), nil
	}
	return model.ParseDate(raw)
}

func (s *Server) queryPreferences(r *http.Request) (model.Preferences, error) {
	q := r.URL.Query()
	var priority float64
	if raw := q.Get("priority"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Preferences{}, fmt.Errorf("%w: priority %q", errBadRequest, raw)
		}
		priority = v
	}
	var estimate int
	if raw := q.Get("estimated_time"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.Preferences{}, fmt.Errorf("%w: estimated_time %q", errBadRequest, raw)
		}
		estimate = v
	}
	return s.svc.Preferences(q.Get("tag"), priority, estimate), nil
}
