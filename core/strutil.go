package core

// Utoa formats n in decimal. Firmware builds DebugPrintln lines with it
// since fmt is too heavy for the targets.
func Utoa(n uint32) string {
	var digits [10]byte // len("4294967295")
	i := len(digits)
	for {
		i--
		digits[i] = '0' + byte(n%10)
		n /= 10
		if n == 0 {
			return string(digits[i:])
		}
	}
}
