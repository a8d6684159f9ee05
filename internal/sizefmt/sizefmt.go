// Package sizefmt renders byte counts as human-readable strings.
package sizefmt

import "fmt"

var units = []string{"Bytes", "KB", "MB", "GB"}

// Format renders n using binary (1024-based) units with two decimal places,
// from Bytes up through GB. Zero renders as "0 Bytes".
func Format(n int64) string {
	if n == 0 {
		return "0 Bytes"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[0])
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
