// internal/alert/evaluate.go
package alert

// Decision is everything one evaluation step produces.
type Decision struct {
	State   State
	Events  []Event
	Pattern *Pattern
}

// Evaluate is an edge detector over the averaged reading.
// It emits only when a condition starts or ends, never while it persists.
// No IO. No side effects.
//
// Branches are checked in order: above high, below low, in range.
// In range clears both flags independently so a stale flag cannot
// survive a threshold change.
func Evaluate(avg float64, st State, th Thresholds) Decision {
	d := Decision{State: st}

	switch {
	case avg > th.High:
		if st.HighActive {
			return d
		}
		d.State.HighActive = true
		d.Events = append(d.Events, Event{
			Condition:  High,
			Average:    avg,
			Thresholds: th,
		})
		p := FastFlash
		d.Pattern = &p

	case avg < th.Low:
		if st.LowActive {
			return d
		}
		d.State.LowActive = true
		d.Events = append(d.Events, Event{
			Condition:  Low,
			Average:    avg,
			Thresholds: th,
		})
		p := SlowFlash
		d.Pattern = &p

	default:
		if st.HighActive {
			d.State.HighActive = false
			d.Events = append(d.Events, Event{
				Condition:  High,
				Average:    avg,
				Thresholds: th,
				Recovery:   true,
			})
		}
		if st.LowActive {
			d.State.LowActive = false
			d.Events = append(d.Events, Event{
				Condition:  Low,
				Average:    avg,
				Thresholds: th,
				Recovery:   true,
			})
		}
	}

	return d
}
