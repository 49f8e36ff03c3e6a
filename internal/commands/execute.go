package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Task  func(TaskArgs) (Result, error)
	Class func(ClassArgs) (Result, error)
	Work  func(WorkArgs) (Result, error)
	Done  func(DoneArgs) (Result, error)
	Next  func(NextArgs) (Result, error)
	Show  func(ShowArgs) (Result, error)
	Adapt func() (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeTask:
		if handlers.Task == nil {
			return Result{}, missing("task")
		}
		return handlers.Task(*cmd.Task)
	case TypeClass:
		if handlers.Class == nil {
			return Result{}, missing("class")
		}
		return handlers.Class(*cmd.Class)
	case TypeWork:
		if handlers.Work == nil {
			return Result{}, missing("work")
		}
		return handlers.Work(*cmd.Work)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing("done")
		}
		return handlers.Done(*cmd.Done)
	case TypeNext:
		if handlers.Next == nil {
			return Result{}, missing("next")
		}
		return handlers.Next(*cmd.Next)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing("show")
		}
		return handlers.Show(*cmd.Show)
	case TypeAdapt:
		if handlers.Adapt == nil {
			return Result{}, missing("adapt")
		}
		return handlers.Adapt()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
