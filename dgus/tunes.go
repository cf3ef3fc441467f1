package dgus

// Note is one tone. Hz 0 is a rest.
type Note struct {
	Hz uint16
	Ms uint16
}

// Tune is a named note sequence
type Tune struct {
	Name  string
	Notes []Note
}

// Duration returns the tune length in milliseconds
func (t Tune) Duration() uint32 {
	var total uint32
	for _, n := range t.Notes {
		total += uint32(n.Ms)
	}
	return total
}

const (
	nRest = 0
	nC6   = 1047
	nE6   = 1319
	nG6   = 1568
	nA6   = 1760
	nC7   = 2093
	nE7   = 2637
	nG7   = 3136
)

var (
	TunePowerOn = Tune{Name: "power on", Notes: []Note{
		{nC6, 500}, {nRest, 100}, {nE6, 500}, {nRest, 100},
		{nG6, 500}, {nRest, 100}, {nC7, 800}, {nRest, 200},
		{nG6, 300}, {nC7, 900},
	}}
	TuneSOS = Tune{Name: "sos", Notes: []Note{
		{nG6, 100}, {nRest, 100}, {nG6, 100}, {nRest, 100}, {nG6, 100}, {nRest, 300},
		{nG6, 300}, {nRest, 100}, {nG6, 300}, {nRest, 100}, {nG6, 300}, {nRest, 300},
		{nG6, 100}, {nRest, 100}, {nG6, 100}, {nRest, 100}, {nG6, 100},
	}}
	TuneFilamentOut = Tune{Name: "filament out", Notes: []Note{
		{nA6, 300}, {nRest, 150}, {nE6, 300}, {nRest, 150}, {nA6, 300}, {nRest, 150}, {nE6, 600},
	}}
	TuneHeaterTimedOut = Tune{Name: "heater timed out", Notes: []Note{
		{nE7, 200}, {nRest, 100}, {nC7, 200}, {nRest, 100}, {nE7, 200}, {nRest, 100}, {nC7, 400},
	}}
	TuneBeepBeepBeeep = Tune{Name: "beep beep beeep", Notes: []Note{
		{nG7, 100}, {nRest, 100}, {nG7, 100}, {nRest, 100}, {nG7, 300},
	}}
)
