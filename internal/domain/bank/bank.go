// Package bank provides helpers for bank identifiers.
package bank

import "fmt"

// DirName returns the zero-padded directory name of a bank, e.g. 1 -> "01".
func DirName(bank int) string {
	return fmt.Sprintf("%02d", bank)
}

// Next returns the bank after b, wrapping from count back to 1.
func Next(b, count int) int {
	if b >= count {
		return 1
	}
	return b + 1
}

// Prev returns the bank before b, wrapping from 1 to count.
func Prev(b, count int) int {
	if b <= 1 {
		return count
	}
	return b - 1
}

// Valid reports whether b is a bank number for a kiosk with count banks.
func Valid(b, count int) bool {
	return b >= 1 && b <= count
}
