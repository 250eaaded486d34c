// Package krw formats won amounts for menus, statements and slips.
package krw

import (
	"strconv"
	"strings"
)

// Format renders an amount with thousands separators: 161384 becomes
// "161,384".
func Format(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
