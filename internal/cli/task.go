package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/planfile"
)

func newTaskCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage pending tasks",
	}
	cmd.AddCommand(newTaskAddCommand(s), newTaskListCommand(s), newTaskRemoveCommand(s))
	return cmd
}

func newTaskAddCommand(s *session) *cobra.Command {
	var opts struct {
		Due      string
		Tag      string
		Estimate int
		Sections int
	}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a task",
		Long: `Register a task. Its priority is computed once, now, from the deadline
and the estimate.

Examples:
  dayplan task add "read chapter 4" --due 2026-02-12 --tag reading --est 45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := model.ParseDate(opts.Due)
			if err != nil {
				return err
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			tag, est := c.TaskDefaults()
			if opts.Tag != "" {
				tag = opts.Tag
			}
			if opts.Estimate != 0 {
				est = opts.Estimate
			}
			task, err := c.AddTask(cmd.Context(), args[0], due.In(c.Location()), tag, est, opts.Sections)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added task %q (priority %.2f, %s energy)\n", task.Name, task.Priority, task.Energy())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Due, "due", "", "Deadline date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "Tag (default from config)")
	cmd.Flags().IntVar(&opts.Estimate, "est", 0, "Estimated minutes (default from config)")
	cmd.Flags().IntVar(&opts.Sections, "sections", 1, "Number of sections")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newTaskListCommand(s *session) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks",
		Long: `Display pending tasks in registration order.

Output format is tab-separated with columns:
  NAME, DUE, TAG, EST, ENERGY, PRIORITY`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			tasks := c.Tasks()
			if asJSON {
				out := make([]taskJSON, 0, len(tasks))
				for _, t := range tasks {
					out = append(out, toTaskJSON(t, c.Location()))
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tDUE\tTAG\tEST\tENERGY\tPRIORITY")
			for _, t := range tasks {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.2f\n", t.Name, t.DeadlineDate(c.Location()), t.Tag, t.EstimatedTime, t.Energy(), t.Priority)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTaskRemoveCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Drop a pending task without completing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			if err := c.RemoveTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed task %q\n", args[0])
			return nil
		},
	}
}

func newClassCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Manage weekly classes",
	}

	var opts struct {
		Days  []string
		Start string
		End   string
	}
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a recurring class",
		Long: `Register a class that meets on the given weekdays.

Examples:
  dayplan class add Algorithms --days mon,wed --start 10:00 --end 11:15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseSpan(opts.Start, opts.End)
			if err != nil {
				return err
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			class, err := c.AddClass(cmd.Context(), args[0], opts.Days, start, end)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added class %q on %s %s-%s\n", class.Name, strings.Join(class.DayNames(), ","), class.Start, class.End)
			return nil
		},
	}
	add.Flags().StringSliceVar(&opts.Days, "days", nil, "Weekdays the class meets (required)")
	add.Flags().StringVar(&opts.Start, "start", "", "Start time HH:MM (required)")
	add.Flags().StringVar(&opts.End, "end", "", "End time HH:MM (required)")
	_ = add.MarkFlagRequired("days")
	_ = add.MarkFlagRequired("start")
	_ = add.MarkFlagRequired("end")

	list := &cobra.Command{
		Use:   "list",
		Short: "List classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			classes := c.Classes()
			if len(classes) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No classes found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tDAYS\tSTART\tEND")
			for _, cl := range classes {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cl.Name, strings.Join(cl.DayNames(), ","), cl.Start, cl.End)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

func newWorkCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Manage working hours",
	}
	set := &cobra.Command{
		Use:   "set <day> <start> <end>",
		Short: "Set the working-hours block for a weekday",
		Long: `Set the single block of task time for a weekday. A later call for the
same day replaces the earlier block.

Examples:
  dayplan work set monday 09:00 17:00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseSpan(args[1], args[2])
			if err != nil {
				return err
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			wh, err := c.SetWorkingHours(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Working hours for %s: %s-%s\n", wh.Day, wh.Start, wh.End)
			return nil
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List working hours, Monday first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DAY\tSTART\tEND\tMINUTES")
			for _, wh := range c.WorkingHours() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", wh.Day, wh.Start, wh.End, wh.Minutes())
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(set, list)
	return cmd
}

func newDoneCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "done <name> <minutes>",
		Short: "Complete a task with the minutes it actually took",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("minutes must be a number, got %q", args[1])
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			entry, err := c.CompleteTask(cmd.Context(), args[0], minutes)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %q in %dm at %s\n", entry.Name, entry.ActualTime, entry.CompletedAt)
			return nil
		},
	}
}

func newImportCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.yaml>",
		Short: "Register classes, working hours and tasks from a YAML plan",
		Long: `Import a YAML plan. Entries are applied in file order and the import stops
at the first rejected entry; everything before it stays registered.

File format:
  classes:
    - {name: Algorithms, days: [mon, wed], start: "10:00", end: "11:15"}
  working_hours:
    - {day: monday, start: "09:00", end: "17:00"}
  tasks:
    - {name: read chapter 4, due: 2026-02-12, tag: reading, estimated_time: 45}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			tag, est := c.TaskDefaults()
			report, err := planfile.Apply(cmd.Context(), plan, c, c.Location(), planfile.Defaults{Tag: tag, EstimatedTime: est})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d class(es), %d working-hours block(s), %d task(s)\n", report.Classes, report.WorkingHours, report.Tasks)
			return err
		},
	}
}

func newAdaptCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "adapt",
		Short: "Fold learned energy preferences into the defaults if due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			adapted, err := c.MaybeAdapt(cmd.Context())
			if err != nil {
				return err
			}
			if !adapted {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Adaptation not due yet.")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Preferences adapted; default estimate now %dm.\n", c.Engine().Defaults().EstimatedTime)
			return nil
		},
	}
}

func parseSpan(start, end string) (model.ClockTime, model.ClockTime, error) {
	s, err := model.ParseClockTime(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := model.ParseClockTime(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
