package cli

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// ExportSummary is what one export run did to the destination.
type ExportSummary struct {
	DestDir      string
	ManifestPath string
	AppFiles     int
	Copied       int
	Skipped      int
	Overwritten  int
	BytesCopied  int64
}

type ExportReport struct {
	output    *Output
	startTime time.Time
}

func NewExportReport(output *Output) *ExportReport {
	return &ExportReport{
		output:    output,
		startTime: time.Now(),
	}
}

func (r *ExportReport) Render(s ExportSummary) {
	r.output.PrintSuccess("%d app files written to %s", s.AppFiles, s.ManifestPath)
	r.output.PrintSuccess("%d runtime files copied (%s)", s.Copied, units.HumanSize(float64(s.BytesCopied)))

	if s.Overwritten > 0 {
		r.output.PrintWarning("%d existing runtime files overwritten", s.Overwritten)
	}
	if s.Skipped > 0 {
		r.output.PrintWarning("%d existing runtime files kept; use --overwrite to replace them", s.Skipped)
	}

	r.output.PrintSuccess("Export complete in %s", formatDuration(time.Since(r.startTime)))
	r.output.PrintFile("Output: " + s.DestDir)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}
