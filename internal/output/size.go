package output

import "fmt"

// FormatKiB renders a byte count as kibibytes with two decimals. Halves round
// away from zero.
func FormatKiB(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	h := (n*100 + 512) / 1024
	return fmt.Sprintf("%s%d.%02dKiB", sign, h/100, h%100)
}
