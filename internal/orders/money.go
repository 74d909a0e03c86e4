package orders

import (
	"fmt"
	"strconv"
)

// FormatEGP renders cents as an Egyptian pound amount, e.g. "1,250.00 ج.م".
func FormatEGP(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.Itoa(cents / 100)
	grouped := ""
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped += ","
		}
		grouped += string(r)
	}
	return fmt.Sprintf("%s%s.%02d ج.م", sign, grouped, cents%100)
}
