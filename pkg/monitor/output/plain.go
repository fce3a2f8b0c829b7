package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter writes aligned, unstyled tables suitable for scripting.
// Sizes are in bytes and memory in kilobytes.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	section := false

	if r.System != nil {
		fmt.Fprintf(tw, "PLATFORM\tTOTAL_KB\tUSED_KB\n")
		fmt.Fprintf(tw, "%s\t%d\t%d\n", r.System.Platform, r.System.TotalMemoryKB, r.System.UsedMemoryKB)
		section = true
	}

	if r.Disks != nil {
		if section {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "MOUNT\tNAME\tTOTAL\tFREE\n")
		for _, d := range r.Disks {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", d.MountPoint, d.Name, d.Total, d.Free)
		}
		section = true
	}

	if r.Temperatures != nil {
		if section {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "LABEL\tCELSIUS\n")
		for _, t := range r.Temperatures {
			fmt.Fprintf(tw, "%s\t%.1f\n", t.Label, t.Celsius)
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
