package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/lomoval/weekcal/internal/client"
	"github.com/lomoval/weekcal/internal/grid"
	"github.com/lomoval/weekcal/internal/weekview"
	"github.com/spf13/cobra"
)

func newWeekCmd(opts *options) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			v, _, err := opts.load(ctx)
			if err != nil {
				return err
			}
			for ; offset > 0; offset-- {
				if err := v.NextWeek(ctx); err != nil {
					return err
				}
			}
			for ; offset < 0; offset++ {
				if err := v.PrevWeek(ctx); err != nil {
					return err
				}
			}
			return printWeek(cmd.OutOrStdout(), v, opts.clock())
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks to move from --date, negative goes back")
	return cmd
}

func printWeek(w io.Writer, v *weekview.View, now time.Time) error {
	snap := v.Snapshot()
	fmt.Fprintln(w, v.RangeLabel())
	g := grid.Layout(snap.Days, grid.Hours(), snap.Events, now)
	if err := grid.Render(w, g); err != nil {
		return err
	}

	events := snap.Events
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	loc := snap.WeekStart.Location()
	for _, e := range events {
		fmt.Fprintf(w, "%s  %s - %s  %s\n", e.ID,
			e.Start.In(loc).Format(localLayout), e.End.In(loc).Format(localLayout), e.Title)
	}
	return nil
}

type eventFlags struct {
	title       string
	description string
	start       string
	end         string
	color       string
}

func (f *eventFlags) bind(cmd *cobra.Command, withTimes bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "Event title")
	cmd.Flags().StringVar(&f.description, "description", "", "Event description")
	cmd.Flags().StringVar(&f.color, "color", "", "Event color, e.g. #3b82f6")
	if withTimes {
		cmd.Flags().StringVar(&f.start, "start", "", "Start time, RFC 3339 or \""+localLayout+"\"")
		cmd.Flags().StringVar(&f.end, "end", "", "End time, RFC 3339 or \""+localLayout+"\"")
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			start, err := parseTime(f.start, loc)
			if err != nil {
				return err
			}
			end, err := parseTime(f.end, loc)
			if err != nil {
				return err
			}
			v := weekview.New(opts.client(), weekview.WithLocation(loc), weekview.WithClock(opts.clock))
			form := v.Editor()
			form.Title = f.title
			form.Description = f.description
			form.Start = start
			form.End = end
			if f.color != "" {
				form.Color = f.color
			}
			return saveAndPrint(cmd, v, form)
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newSlotCmd(opts *options) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "slot DAY HOUR",
		Short: "Create a one hour event in a grid slot, DAY is 1 (Monday) to 7",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[0])
			if err != nil || day < 1 || day > weekview.DaysInWeek {
				return fmt.Errorf("invalid day %q", args[0])
			}
			hour, err := strconv.Atoi(args[1])
			if err != nil || hour < 0 || hour > 23 {
				return fmt.Errorf("invalid hour %q", args[1])
			}

			v, _, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			v.ClickSlot(v.Snapshot().Days[day-1], hour)
			form := v.Editor()
			form.Title = f.title
			form.Description = f.description
			if f.color != "" {
				form.Color = f.color
			}
			return saveAndPrint(cmd, v, form)
		},
	}
	f.bind(cmd, false)
	return cmd
}

func saveAndPrint(cmd *cobra.Command, v *weekview.View, form weekview.Form) error {
	if err := v.Save(cmd.Context(), form); err != nil {
		return err
	}
	events := v.Snapshot().Events
	if len(events) > 0 {
		created := events[len(events)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
	}
	return nil
}

func newUpdateCmd(opts *options) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the given members of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			p, err := f.patch(cmd, loc)
			if err != nil {
				return err
			}
			updated, err := opts.client().Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", updated.ID)
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

// patch holds only the flags set on the command line.
func (f *eventFlags) patch(cmd *cobra.Command, loc *time.Location) (client.Patch, error) {
	var p client.Patch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("color") {
		p.Color = &f.color
	}
	if changed("start") {
		t, err := parseTime(f.start, loc)
		if err != nil {
			return p, err
		}
		p.Start = &t
	}
	if changed("end") {
		t, err := parseTime(f.end, loc)
		if err != nil {
			return p, err
		}
		p.End = &t
	}
	return p, nil
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := weekview.New(opts.client(), weekview.WithClock(opts.clock))
			v.ClickEvent(client.Event{ID: args[0]})
			if err := v.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
