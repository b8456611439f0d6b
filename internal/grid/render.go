package grid

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	cellWidth = 16
	nowMarker = "--- now ---"
)

// Render writes the grid as a table with one row per hour. A cell shows the
// event starting in that hour, or a continuation bar while an event lasts.
func Render(w io.Writer, g Grid) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%-6s", "")
	for _, col := range g.Columns {
		label := col.Day.Format("Mon 2")
		if col.Today {
			label = "*" + label
		}
		fmt.Fprint(bw, "|", pad(label))
	}
	fmt.Fprintln(bw, "|")

	for _, h := range g.Hours {
		fmt.Fprintf(bw, "%02d:00 ", h)
		for _, col := range g.Columns {
			fmt.Fprint(bw, "|", pad(cell(col, h)))
		}
		fmt.Fprintln(bw, "|")
	}
	return bw.Flush()
}

func cell(col Column, hour int) string {
	from, to := hour*60, (hour+1)*60
	var continued string
	for _, b := range col.Blocks {
		if b.StartMinute >= from && b.StartMinute < to {
			return fmt.Sprintf("%s %s", b.Event.Start.In(col.Day.Location()).Format("15:04"), b.Event.Title)
		}
		if continued == "" && b.StartMinute < from && b.StartMinute+b.Duration > from {
			continued = "  |"
		}
	}
	if continued != "" {
		return continued
	}
	if col.Today {
		nowMinute := int(col.NowOffset / 100 * minutesInDay)
		if nowMinute >= from && nowMinute < to {
			return nowMarker
		}
	}
	return ""
}

func pad(s string) string {
	if utf8.RuneCountInString(s) > cellWidth {
		r := []rune(s)
		return string(r[:cellWidth-1]) + "~"
	}
	return s + strings.Repeat(" ", cellWidth-utf8.RuneCountInString(s))
}
