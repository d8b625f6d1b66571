package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/pkg/notice"
)

// RenderList writes the listing as an aligned table.
func RenderList(w io.Writer, events []event.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATE\tTIME\tVENUE\tFLAGS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.EventDate, e.EventTime, e.Venue, flags(e.Fields))
	}
	return tw.Flush()
}

// RenderDetail writes every field of one event.
func RenderDetail(w io.Writer, e *event.Event) error {
	guest := "-"
	if e.Guest != nil {
		guest = *e.Guest
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", e.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", e.Description)
	fmt.Fprintf(tw, "Venue:\t%s\n", e.Venue)
	fmt.Fprintf(tw, "When:\t%s %s\n", e.EventDate, e.EventTime)
	fmt.Fprintf(tw, "Guest:\t%s\n", guest)
	fmt.Fprintf(tw, "Flags:\t%s\n", flags(e.Fields))
	fmt.Fprintf(tw, "Banner:\t%s\n", e.Banner)
	for i, u := range e.ImageURLs {
		fmt.Fprintf(tw, "Image %d:\t%s\n", i+1, u)
	}
	return tw.Flush()
}

// RenderNotice writes one notice on its own line.
func RenderNotice(w io.Writer, n notice.Notice) {
	fmt.Fprintf(w, "[%s] %s: %s\n", strings.ToUpper(string(n.Level)), n.Title, n.Message)
}

func flags(f event.Fields) string {
	var out []string
	if f.IsPaid {
		out = append(out, "paid")
	}
	if f.IsOnline {
		out = append(out, "online")
	}
	if f.IsPrivate {
		out = append(out, "private")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
