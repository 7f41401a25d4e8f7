package netcli

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/malbeclabs/netcli/platform"
)

// DescribePrivileges renders p's privilege levels as a table: name, parent,
// escalate/deescalate commands, and whether the level is
// configuration-only. Intended for CLI diagnostics and bug reports, not for
// anything Driver itself consumes.
func DescribePrivileges(w io.Writer, p *platform.PlatformDefinition) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader([]string{"Level", "Parent", "Escalate", "Deescalate", "Config-only"})

	for _, l := range p.Levels() {
		parent, hasParent := l.Parent()
		if !hasParent {
			parent = "-"
		}
		escalate := l.EscalateCmd()
		if escalate == "" {
			escalate = "-"
		}
		deescalate := l.DeescalateCmd()
		if deescalate == "" {
			deescalate = "-"
		}
		configOnly := "no"
		if l.ConfigOnly() {
			configOnly = "yes"
		}
		table.Append([]string{l.Name(), parent, escalate, deescalate, configOnly})
	}

	table.Render()
}
