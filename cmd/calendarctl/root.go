package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lomoval/weekcal/internal/client"
	"github.com/lomoval/weekcal/internal/weekview"
	"github.com/spf13/cobra"
)

const (
	dateLayout  = "2006-01-02"
	localLayout = "2006-01-02 15:04"
)

type options struct {
	api      string
	date     string
	timezone string
	timeout  time.Duration
	clock    func() time.Time
}

func newRootCmd(clock func() time.Time) *cobra.Command {
	opts := &options{clock: clock}
	root := &cobra.Command{
		Use:           "calendarctl",
		Short:         "Browse and edit the week calendar from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.api, "api", getEnv("CALENDAR_API", "http://localhost:3002/api/v1"),
		"Calendar API base URL")
	root.PersistentFlags().StringVar(&opts.date, "date", "", "Any date of the week to show, YYYY-MM-DD (default today)")
	root.PersistentFlags().StringVar(&opts.timezone, "tz", "Local", "Time zone of the grid")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(
		newWeekCmd(opts),
		newCreateCmd(opts),
		newSlotCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newVersionCmd(),
	)
	return root
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (o *options) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", o.timezone, err)
	}
	return loc, nil
}

func (o *options) client() *client.Client {
	return client.New(o.api, client.WithHTTPClient(&http.Client{Timeout: o.timeout}))
}

// load builds a week view and fetches the week containing --date.
func (o *options) load(ctx context.Context) (*weekview.View, *time.Location, error) {
	loc, err := o.location()
	if err != nil {
		return nil, nil, err
	}
	v := weekview.New(o.client(), weekview.WithLocation(loc), weekview.WithClock(o.clock))
	if o.date == "" {
		return v, loc, v.Refresh(ctx)
	}
	day, err := time.ParseInLocation(dateLayout, o.date, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --date %q: %w", o.date, err)
	}
	return v, loc, v.SetDate(ctx, day)
}

// parseTime accepts RFC 3339 or a wall clock time in the grid time zone.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{localLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or %q", s, localLayout)
}
