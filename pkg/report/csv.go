package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/zan8in/tcpscan/pkg/portscan"
)

var csvHeader = []string{"Host", "Port Number", "Status"}

// WriteCSV writes one row per probed port.
func WriteCSV(w io.Writer, reports []*portscan.ScanReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reports {
		for _, res := range r.Results {
			if err := cw.Write([]string{r.Host, strconv.Itoa(res.Port), res.Status.String()}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
