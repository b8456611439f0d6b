// Package grid lays calendar events out on a week of day columns.
package grid

import (
	"time"

	"github.com/lomoval/weekcal/internal/client"
	"github.com/lomoval/weekcal/internal/util"
)

const (
	minutesInDay = 24 * 60
	// MinDuration is the shortest height an event is drawn with.
	MinDuration = 15
)

// Block is an event placed in a column. Top and Height are percentages of
// the day, StartMinute and Duration are the same geometry in minutes.
type Block struct {
	Event       client.Event
	Top         float64
	Height      float64
	StartMinute int
	Duration    int
}

// Column is one day. NowOffset is the current-time line position and is
// meaningful only when Today is set.
type Column struct {
	Day       time.Time
	Today     bool
	NowOffset float64
	Blocks    []Block
}

type Grid struct {
	Hours   []int
	Columns []Column
}

// Hours returns 0..23.
func Hours() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// Layout places every event in the column of its start date. Events are not
// split at midnight, a block may extend past the bottom of its column.
func Layout(days []time.Time, hours []int, events []client.Event, now time.Time) Grid {
	g := Grid{Hours: hours, Columns: make([]Column, 0, len(days))}
	for _, day := range days {
		col := Column{Day: day, Today: util.SameDay(day, now.In(day.Location()))}
		if col.Today {
			local := now.In(day.Location())
			col.NowOffset = percent(minutesBetween(util.TruncateToDay(local), local))
		}
		for _, e := range events {
			start := e.Start.In(day.Location())
			if !util.SameDay(start, day) {
				continue
			}
			col.Blocks = append(col.Blocks, Place(e, day.Location()))
		}
		g.Columns = append(g.Columns, col)
	}
	return g
}

// Place computes the geometry of one event in loc.
func Place(e client.Event, loc *time.Location) Block {
	start := e.Start.In(loc)
	duration := minutesBetween(start, e.End.In(loc))
	if duration < MinDuration {
		duration = MinDuration
	}
	startMinute := minutesBetween(util.TruncateToDay(start), start)
	return Block{
		Event:       e,
		Top:         percent(startMinute),
		Height:      percent(duration),
		StartMinute: startMinute,
		Duration:    duration,
	}
}

// minutesBetween counts whole minutes, truncating toward zero.
func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}

func percent(minutes int) float64 {
	return float64(minutes) / minutesInDay * 100
}
