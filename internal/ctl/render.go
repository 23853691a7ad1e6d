package ctl

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tunneld/internal/directory"
	"tunneld/internal/wire"
)

// StatusDetails is the optional local context shown next to the daemon's
// answer. Empty fields are omitted from the output.
type StatusDetails struct {
	Device   string
	PublicIP string
}

// RenderStatus prints the daemon status as an aligned key/value table.
func RenderStatus(w io.Writer, res wire.StatusResponse, details StatusDetails) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if res.Connected == nil {
		fmt.Fprintf(tw, "Status:\tdisconnected\n")
	} else {
		fmt.Fprintf(tw, "Status:\tconnected\n")
		fmt.Fprintf(tw, "Server:\t%s\n", res.Connected.Name)
		fmt.Fprintf(tw, "Protocol:\t%s\n", res.Connected.Protocol)
		fmt.Fprintf(tw, "PID:\t%d\n", res.Connected.PID)
		if details.Device != "" {
			fmt.Fprintf(tw, "Interface:\t%s\n", details.Device)
		}
	}
	if details.PublicIP != "" {
		fmt.Fprintf(tw, "Public IP:\t%s\n", details.PublicIP)
	}
}

// RenderServers prints a directory listing, one server per row.
func RenderServers(w io.Writer, servers directory.Directory) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tLOAD\tSCORE\tFEATURES")
	for _, s := range servers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%.2f\t%s\n",
			s.ID, s.Name, s.ExitCountry, s.Load, s.Score,
			strings.Join(s.Features.Names(), ","))
	}
}
