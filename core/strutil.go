package core

// itoa formats an integer without dragging fmt into the firmware
// image. Debug traces are the only caller.
func itoa(n int) string {
	var buf [12]byte // fits a signed 32-bit value
	i := len(buf)
	u := uint(n)
	if n < 0 {
		u = uint(-n)
	}
	for {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if n < 0 {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
