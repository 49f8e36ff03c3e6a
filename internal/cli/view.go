package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/app"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
)

type taskJSON struct {
	Name          string           `json:"name"`
	Deadline      model.Date       `json:"deadline"`
	Tag           string           `json:"tag"`
	EstimatedTime int              `json:"estimated_time"`
	Sections      int              `json:"sections"`
	Priority      float64          `json:"priority"`
	EnergyLevel   model.EnergyTier `json:"energy_level"`
}

func toTaskJSON(t model.Task, loc *time.Location) taskJSON {
	return taskJSON{
		Name:          t.Name,
		Deadline:      t.DeadlineDate(loc),
		Tag:           t.Tag,
		EstimatedTime: t.EstimatedTime,
		Sections:      t.Sections,
		Priority:      t.Priority,
		EnergyLevel:   t.Energy(),
	}
}

// prefFlags are the per-query ranking preferences shared by schedule and next.
type prefFlags struct {
	Tag      string
	Priority float64
	Estimate int
}

func (p *prefFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Tag, "tag", "", "Preferred tag (default from config)")
	cmd.Flags().Float64Var(&p.Priority, "priority", 0, "Priority weight (default from config)")
	cmd.Flags().IntVar(&p.Estimate, "est", 0, "Preferred task length in minutes (default from config)")
}

func (p prefFlags) resolve(c *app.Container) model.Preferences {
	return c.Preferences(p.Tag, p.Priority, p.Estimate)
}

func dateFlag(c *app.Container, raw string) (model.Date, error) {
	if raw == "" {
		return c.Today(), nil
	}
	return model.ParseDate(raw)
}

func newScheduleCommand(s *session) *cobra.Command {
	var opts struct {
		Date string
		JSON bool
		prefFlags
	}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the day's classes and packed working block",
		Long: `Lay out a day: its classes, then the working-hours block filled with
the highest-ranked tasks that fit the time left after overlapping classes.

Examples:
  dayplan schedule
  dayplan schedule --date 2026-02-10 --tag reading`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			date, err := dateFlag(c, opts.Date)
			if err != nil {
				return err
			}
			entries := c.Schedule(date, opts.resolve(c))
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			printSchedule(cmd.OutOrStdout(), date, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Date, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	opts.prefFlags.register(cmd)
	return cmd
}

func printSchedule(w io.Writer, date model.Date, entries []scheduler.Entry) {
	_, _ = fmt.Fprintf(w, "Schedule for %s (%s)\n", date, date.Weekday())
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "Nothing scheduled.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "START\tEND\tKIND\tNAME\tMIN")
	for _, e := range entries {
		name := e.Name
		if e.Kind == scheduler.KindWorkingHours {
			name = "working hours"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Start, e.End, e.Kind, name, e.Duration)
		for _, t := range e.Tasks {
			mark := "[ ]"
			minutes := t.EstimatedTime
			if t.Finished && t.ActualTime != nil {
				mark = "[x]"
				minutes = *t.ActualTime
			}
			_, _ = fmt.Fprintf(tw, "\t\t%s\t%s (due %s, score %.2f)\t%d\n", mark, t.Name, t.Deadline, t.Score, minutes)
		}
	}
	_ = tw.Flush()
}

func newNextCommand(s *session) *cobra.Command {
	var opts struct {
		Energy string
		JSON   bool
		prefFlags
	}

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Pick the task to work on now",
		Long: `Pick the best pending task for an energy tier (low, medium, high).
When nothing matches the tier, less demanding tiers are tried from low
upward. With --energy auto (the default) the learner picks the tier.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var energy model.EnergyTier
			if raw := strings.TrimSpace(opts.Energy); raw != "" && !strings.EqualFold(raw, "auto") {
				tier, err := model.ParseEnergyTier(raw)
				if err != nil {
					return err
				}
				energy = tier
			}
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			if energy == "" {
				energy = c.SuggestEnergy()
			}
			task, ok, err := c.NextTask(opts.resolve(c), energy)
			if err != nil {
				return err
			}
			if opts.JSON {
				if !ok {
					return writeJSON(cmd.OutOrStdout(), nil)
				}
				return writeJSON(cmd.OutOrStdout(), toTaskJSON(task, c.Location()))
			}
			if !ok {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No task fits %s energy.\n", energy)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Next (%s energy): %s, due %s, %dm [%s]\n",
				energy, task.Name, task.DeadlineDate(c.Location()), task.EstimatedTime, task.Energy())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Energy, "energy", "auto", "Energy tier: low, medium, high or auto")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	opts.prefFlags.register(cmd)
	return cmd
}

func newSummaryCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize completed work",
	}

	var daily struct {
		Date string
		JSON bool
	}
	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Summarize one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			date, err := dateFlag(c, daily.Date)
			if err != nil {
				return err
			}
			sum := c.DailySummary(date)
			if daily.JSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Summary for %s\n", sum.Date)
			_, _ = fmt.Fprintf(out, "Study time: %dm\nCompleted: %d (average %dm)\nOverdue: %d\n",
				sum.TotalStudyTime, sum.CompletedTasks, sum.AverageTaskTime, sum.OverdueTasks)
			if len(sum.Tasks) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tSPENT\tEST\tAT")
			for _, t := range sum.Tasks {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Name, t.TimeSpent, t.EstimatedTime, t.CompletionTime)
			}
			return tw.Flush()
		},
	}
	dailyCmd.Flags().StringVar(&daily.Date, "date", "", "Date YYYY-MM-DD (default today)")
	dailyCmd.Flags().BoolVar(&daily.JSON, "json", false, "Output in JSON format")

	var weekly struct {
		Start string
		JSON  bool
	}
	weeklyCmd := &cobra.Command{
		Use:   "weekly",
		Short: "Summarize seven days",
		Long:  `Summarize seven days from --start, or the current week from Monday when omitted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := s.app(cmd)
			if err != nil {
				return err
			}
			var start model.Date
			if weekly.Start != "" {
				if start, err = model.ParseDate(weekly.Start); err != nil {
					return err
				}
			}
			sum := c.WeeklySummary(start)
			if weekly.JSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Week %s to %s: %d task(s), %dm studied\n", sum.StartDate, sum.EndDate, sum.CompletedTasks, sum.TotalStudyTime)
			tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DATE\tDAY\tTASKS\tSTUDY\tCLASS")
			for _, d := range sum.DailyBreakdown {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", d.Date, d.Date.Weekday(), d.CompletedTasks, d.StudyTime, d.ClassTime)
			}
			return tw.Flush()
		},
	}
	weeklyCmd.Flags().StringVar(&weekly.Start, "start", "", "First day YYYY-MM-DD (default this Monday)")
	weeklyCmd.Flags().BoolVar(&weekly.JSON, "json", false, "Output in JSON format")

	cmd.AddCommand(dailyCmd, weeklyCmd)
	return cmd
}
