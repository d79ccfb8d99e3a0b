package show

import "time"

// ChompStep is one jaw actuation: solenoid on for Open, then off for Close.
type ChompStep struct {
	Open  time.Duration
	Close time.Duration
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// DefaultChomps is the jaw rhythm of every activation.
func DefaultChomps() []ChompStep {
	return []ChompStep{
		{ms(2000), ms(1000)},
		{ms(1000), ms(500)},
		{ms(500), ms(300)},
		{ms(500), ms(300)},
		{ms(1500), ms(300)},
		{ms(500), ms(500)},
		{ms(500), ms(300)},
		{ms(500), ms(1000)},
		{ms(500), ms(500)},
		{ms(500), ms(300)},
		{ms(500), ms(1000)},
	}
}

// ChompDuration is the total time a chomp schedule takes.
func ChompDuration(chomps []ChompStep) time.Duration {
	var d time.Duration
	for _, c := range chomps {
		d += c.Open + c.Close
	}
	return d
}
