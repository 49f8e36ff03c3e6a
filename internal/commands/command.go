package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type Type string

const (
	TypeTask  Type = "task"
	TypeClass Type = "class"
	TypeWork  Type = "work"
	TypeDone  Type = "done"
	TypeNext  Type = "next"
	TypeShow  Type = "show"
	TypeAdapt Type = "adapt"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// TaskArgs: task <name...> due:YYYY-MM-DD [tag:x] [est:minutes] [sections:n]
type TaskArgs struct {
	Name          string
	Due           model.Date
	Tag           string
	EstimatedTime int
	Sections      int
}

// ClassArgs: class <name...> days:mon,wed start:HH:MM end:HH:MM
type ClassArgs struct {
	Name  string
	Days  []string
	Start model.ClockTime
	End   model.ClockTime
}

// WorkArgs: work <day> <HH:MM> <HH:MM>
type WorkArgs struct {
	Day   string
	Start model.ClockTime
	End   model.ClockTime
}

// DoneArgs: done <name...> <minutes>
type DoneArgs struct {
	Name       string
	ActualTime int
}

// NextArgs: next [low|medium|high|auto]. An empty Energy means auto.
type NextArgs struct {
	Energy model.EnergyTier
}

type ShowSubject string

const (
	ShowSchedule ShowSubject = "schedule"
	ShowSummary  ShowSubject = "summary"
	ShowWeek     ShowSubject = "week"
)

// ShowArgs: show schedule|summary|week [YYYY-MM-DD]. A zero Date means today,
// or the current week for week.
type ShowArgs struct {
	Subject ShowSubject
	Date    model.Date
}

type Command struct {
	Type  Type
	Raw   string
	Task  *TaskArgs
	Class *ClassArgs
	Work  *WorkArgs
	Done  *DoneArgs
	Next  *NextArgs
	Show  *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeTask:
		return parseTask(input, args)
	case TypeClass:
		return parseClass(input, args)
	case TypeWork:
		return parseWork(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeNext:
		return parseNext(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeAdapt:
		return Command{Type: TypeAdapt, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// splitOptions separates key:value tokens from the free-text words around them.
func splitOptions(args []string, keys ...string) ([]string, map[string]string) {
	words := make([]string, 0, len(args))
	opts := make(map[string]string)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if ok && containsKey(keys, strings.ToLower(key)) {
			opts[strings.ToLower(key)] = value
			continue
		}
		words = append(words, arg)
	}
	return words, opts
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func parseTask(raw string, args []string) (Command, error) {
	words, opts := splitOptions(args, "due", "tag", "est", "sections")
	name := strings.TrimSpace(strings.Join(words, " "))
	if name == "" {
		return Command{}, invalid("task requires a name")
	}
	dueRaw, ok := opts["due"]
	if !ok {
		return Command{}, invalid("task requires due:YYYY-MM-DD")
	}
	due, err := model.ParseDate(dueRaw)
	if err != nil {
		return Command{}, invalid("bad due date %q", dueRaw)
	}
	out := &TaskArgs{Name: name, Due: due, Tag: opts["tag"], Sections: 1}
	if v, ok := opts["est"]; ok {
		if out.EstimatedTime, err = strconv.Atoi(v); err != nil || out.EstimatedTime <= 0 {
			return Command{}, invalid("est must be a positive number of minutes, got %q", v)
		}
	}
	if v, ok := opts["sections"]; ok {
		if out.Sections, err = strconv.Atoi(v); err != nil || out.Sections < 1 {
			return Command{}, invalid("sections must be at least 1, got %q", v)
		}
	}
	return Command{Type: TypeTask, Raw: raw, Task: out}, nil
}

func parseClass(raw string, args []string) (Command, error) {
	words, opts := splitOptions(args, "days", "start", "end")
	name := strings.TrimSpace(strings.Join(words, " "))
	if name == "" {
		return Command{}, invalid("class requires a name")
	}
	days := make([]string, 0)
	for _, d := range strings.Split(opts["days"], ",") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return Command{}, invalid("class requires days:mon,wed")
	}
	start, err := model.ParseClockTime(opts["start"])
	if err != nil {
		return Command{}, invalid("class requires start:HH:MM")
	}
	end, err := model.ParseClockTime(opts["end"])
	if err != nil {
		return Command{}, invalid("class requires end:HH:MM")
	}
	return Command{Type: TypeClass, Raw: raw, Class: &ClassArgs{Name: name, Days: days, Start: start, End: end}}, nil
}

func parseWork(raw string, args []string) (Command, error) {
	if len(args) != 3 {
		return Command{}, invalid("work requires day, start and end")
	}
	start, err := model.ParseClockTime(args[1])
	if err != nil {
		return Command{}, invalid("bad start time %q", args[1])
	}
	end, err := model.ParseClockTime(args[2])
	if err != nil {
		return Command{}, invalid("bad end time %q", args[2])
	}
	return Command{Type: TypeWork, Raw: raw, Work: &WorkArgs{Day: args[0], Start: start, End: end}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("done requires a task name and minutes spent")
	}
	last := args[len(args)-1]
	minutes, err := strconv.Atoi(last)
	if err != nil || minutes < 0 {
		return Command{}, invalid("minutes spent must be a non-negative number, got %q", last)
	}
	name := strings.Join(args[:len(args)-1], " ")
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Name: name, ActualTime: minutes}}, nil
}

func parseNext(raw string, args []string) (Command, error) {
	out := &NextArgs{}
	if len(args) == 0 || strings.EqualFold(args[0], "auto") {
		return Command{Type: TypeNext, Raw: raw, Next: out}, nil
	}
	tier, err := model.ParseEnergyTier(args[0])
	if err != nil {
		return Command{}, invalid("energy must be low, medium, high or auto, got %q", args[0])
	}
	out.Energy = tier
	return Command{Type: TypeNext, Raw: raw, Next: out}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("show requires a subject")
	}
	subject := ShowSubject(strings.ToLower(args[0]))
	switch subject {
	case ShowSchedule, ShowSummary, ShowWeek:
	default:
		return Command{}, invalid("unknown show subject %q", args[0])
	}
	out := &ShowArgs{Subject: subject}
	if len(args) > 1 {
		date, err := model.ParseDate(args[1])
		if err != nil {
			return Command{}, invalid("bad date %q", args[1])
		}
		out.Date = date
	}
	return Command{Type: TypeShow, Raw: raw, Show: out}, nil
}
