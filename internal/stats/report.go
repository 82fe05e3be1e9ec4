package stats

import (
	"fmt"
	"strings"
)

// FormatReport renders a sorted snapshot as text:
//
//	IPs:
//	  127.0.0.1: 2
//	  10.0.0.7: 1
func FormatReport(entries []IPCount) string {
	var b strings.Builder
	b.WriteString("IPs:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s: %d\n", e.IP, e.Count)
	}
	return b.String()
}
