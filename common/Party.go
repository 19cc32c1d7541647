package common

import "fmt"

// Party is one of the two political affiliations in the simulation.
type Party string

const (
	PartyA Party = "A"
	PartyB Party = "B"
)

var Parties = []Party{PartyA, PartyB}

// Sign maps A to +1 and B to -1.
func (p Party) Sign() float64 {
	if p == PartyA {
		return 1
	}
	return -1
}

func (p Party) Other() Party {
	if p == PartyA {
		return PartyB
	}
	return PartyA
}

func (p Party) Valid() bool {
	return p == PartyA || p == PartyB
}

// Polarity is the stance of a news item relative to its own party.
type Polarity int

const (
	Against Polarity = -1
	For     Polarity = 1
)

var Polarities = []Polarity{Against, For}

func (p Polarity) Valid() bool {
	return p == Against || p == For
}

// Archetype is an agent's behavioural class. User archetypes can change at
// runtime through conversion, source archetypes never do.
type Archetype int

const (
	Susceptible Archetype = iota
	Skeptic
	Bot
	NewsReel
)

func (a Archetype) String() string {
	switch a {
	case Susceptible:
		return "Susceptible"
	case Skeptic:
		return "Skeptic"
	case Bot:
		return "Bot"
	case NewsReel:
		return "NewsReel"
	default:
		return fmt.Sprintf("Archetype(%d)", int(a))
	}
}

// CanReceiveNews reports whether agents of this archetype take part in
// propagation as receivers.
func (a Archetype) CanReceiveNews() bool {
	return a == Susceptible || a == Skeptic
}

func ParseArchetype(s string) (Archetype, error) {
	for _, a := range []Archetype{Susceptible, Skeptic, Bot, NewsReel} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

// MarshalText lets archetypes appear by name in snapshots and CSV output.
func (a Archetype) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Archetype) UnmarshalText(b []byte) error {
	parsed, err := ParseArchetype(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
