package common

import "math"

// Perception holds an agent's belief toward each party, each in [-1,1].
type Perception struct {
	A float64 `json:"A"`
	B float64 `json:"B"`
}

func (p Perception) Get(party Party) float64 {
	if party == PartyA {
		return p.A
	}
	return p.B
}

// Set stores v for party, clamped to [-1,1] and rounded to two decimals.
func (p *Perception) Set(party Party, v float64) {
	v = RoundTo(Clamp(v, -1, 1), 2)
	if party == PartyA {
		p.A = v
	} else {
		p.B = v
	}
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
