package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/zan8in/tcpscan/pkg/log"
	"github.com/zan8in/tcpscan/pkg/portscan"
)

// PrintTable renders one report as a PORT/STATUS table. With openOnly set
// closed and error rows are skipped.
func PrintTable(w io.Writer, r *portscan.ScanReport, openOnly bool) {
	fmt.Fprintf(w, "\n%s %s (%s) ports %d-%d\n", log.LogColor.Title("Scan report for"), r.Host, r.Address, r.StartPort, r.EndPort)

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tSTATUS")
	shown := 0
	for _, res := range r.Results {
		if openOnly && res.Status != portscan.StatusOpen {
			continue
		}
		status := log.LogColor.Status(res.Status.String())
		if res.Reason != "" {
			status += " (" + res.Reason + ")"
		}
		fmt.Fprintf(tw, "%d/tcp\t%s\n", res.Port, status)
		shown++
	}
	_ = tw.Flush()

	if openOnly && shown == 0 {
		fmt.Fprintln(w, "no open ports")
	}
	fmt.Fprintf(w, "%s open=%s closed=%d error=%d duration=%s\n",
		log.LogColor.Time("summary"),
		log.LogColor.Open(fmt.Sprint(r.Count(portscan.StatusOpen))),
		r.Count(portscan.StatusClosed),
		r.Count(portscan.StatusError),
		r.Duration.Truncate(time.Millisecond),
	)
}
