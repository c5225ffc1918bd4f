package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	fileutil "github.com/zan8in/pins/file"
	timeutil "github.com/zan8in/pins/time"
	"github.com/zan8in/tcpscan/pkg/portscan"
)

type Format int

const (
	FormatJSON Format = iota
	FormatCSV
)

func (f Format) Ext() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".json"
}

const OutputDirectory = "./reports"

// Report collects finished scan reports and writes them to one file.
// Reports are only read, never modified.
type Report struct {
	sync.Mutex
	ReportFile string
	Format     Format
	reports    []*portscan.ScanReport
}

// fileName: the name of the report file, empty for ./reports/<time><ext>
// format: used when fileName is empty
func NewReport(fileName string, format Format) (*Report, error) {
	r := &Report{Format: format}
	if err := r.check(fileName); err != nil {
		return nil, err
	}
	return r, nil
}

func (report *Report) check(fileName string) error {
	if len(fileName) == 0 {
		if !fileutil.FolderExists(OutputDirectory) {
			fileutil.CreateFolder(OutputDirectory)
		}
		report.ReportFile = filepath.Join(OutputDirectory, timeutil.Format(timeutil.Format_1)+report.Format.Ext())
		return nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		report.Format = FormatJSON
	case ".csv":
		report.Format = FormatCSV
	default:
		return fmt.Errorf("please change the file extension of the output to .json or .csv. Unable to create output file")
	}

	if dir := filepath.Dir(fileName); dir != "." && !fileutil.FolderExists(dir) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "unable to create output directory")
		}
	}
	report.ReportFile = fileName
	return nil
}

// Append adds a finished scan; safe for concurrent use.
func (report *Report) Append(r *portscan.ScanReport) {
	if r == nil {
		return
	}
	report.Lock()
	report.reports = append(report.reports, r)
	report.Unlock()
}

// Save writes every appended scan, ordered by host, to ReportFile.
func (report *Report) Save() error {
	report.Lock()
	reports := sortedByHost(report.reports)
	report.Unlock()

	f, err := os.OpenFile(report.ReportFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to create output file")
	}
	defer f.Close()

	wbuf := bufio.NewWriter(f)
	switch report.Format {
	case FormatCSV:
		err = WriteCSV(wbuf, reports)
	default:
		err = WriteJSON(wbuf, reports)
	}
	if err != nil {
		return err
	}
	return wbuf.Flush()
}
