package protocol

// FormatFloat renders v with two decimals the way the panel firmware does.
// The value is rounded half away from zero to hundredths. At most three
// integer digits are kept, so 12345.6 renders as "345.60".
func FormatFloat(v float32) string {
	x := float64(v*10) * 100
	if v < 0 {
		x -= 5
	} else {
		x += 5
	}
	xx := int64(x / 10)

	out := make([]byte, 0, 8)
	if xx < 0 {
		xx = -xx
		out = append(out, '-')
	}
	n := int(xx)
	switch {
	case n >= 10000:
		out = append(out, digit(n, 10000), digit(n, 1000), digit(n, 100))
	case n >= 1000:
		out = append(out, digit(n, 1000), digit(n, 100))
	case n >= 100:
		out = append(out, digit(n, 100))
	default:
		out = append(out, '0')
	}
	out = append(out, '.', digit(n, 10), digit(n, 1))
	return string(out)
}

// FormatUint3 renders n right-justified in three characters.
// Only the low three digits are kept.
func FormatUint3(n uint32) string {
	v := int(n)
	out := [3]byte{' ', ' ', digit(v, 1)}
	if n >= 100 {
		out[0] = digit(v, 100)
	}
	if n >= 10 {
		out[1] = digit(v, 10)
	}
	return string(out[:])
}

// FormatHoursMinutes renders a minute count as "hhh H mmm M"
func FormatHoursMinutes(minutes uint32) string {
	return FormatUint3(minutes/60) + " H " + FormatUint3(minutes%60) + " M"
}

// FormatDuration renders seconds as years, days, hours, minutes and seconds.
// Leading zero units are omitted.
func FormatDuration(seconds uint32) string {
	y := seconds / 31536000
	d := (seconds / 86400) % 365
	h := (seconds / 3600) % 24
	m := (seconds / 60) % 60
	s := seconds % 60

	switch {
	case y > 0:
		return Utoa(y) + "y " + Utoa(d) + "d " + Utoa(h) + "h " + Utoa(m) + "m " + Utoa(s) + "s"
	case d > 0:
		return Utoa(d) + "d " + Utoa(h) + "h " + Utoa(m) + "m " + Utoa(s) + "s"
	case h > 0:
		return Utoa(h) + "h " + Utoa(m) + "m " + Utoa(s) + "s"
	case m > 0:
		return Utoa(m) + "m " + Utoa(s) + "s"
	}
	return Utoa(s) + "s"
}
