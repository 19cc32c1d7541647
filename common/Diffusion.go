package common

// DiffusionParams are the run-wide constants of the belief model.
type DiffusionParams struct {
	// Alpha is the diffusion rate applied to every perception update.
	Alpha float64 `yaml:"alpha"`
	// ThresholdToSkeptic converts a Susceptible whose perception of the
	// other party falls to or below it.
	ThresholdToSkeptic float64 `yaml:"threshold_to_skeptic"`
	// ThresholdToSusceptible converts a Skeptic whose perception of the
	// other party rises to or above it.
	ThresholdToSusceptible float64 `yaml:"threshold_to_susceptible"`
}

func DefaultDiffusionParams() DiffusionParams {
	return DiffusionParams{
		Alpha:                  0.1,
		ThresholdToSkeptic:     -0.3,
		ThresholdToSusceptible: 0.3,
	}
}

// Weights of the share probability: alignment, news credibility, agent credibility.
type Weights struct {
	Alignment        float64
	NewsCredibility  float64
	AgentCredibility float64
}

// Behavior is the table of rules selected by an agent's archetype tag.
type Behavior struct {
	Weights Weights
	// RejectsFalseNews forces a no-share on false news without drawing.
	RejectsFalseNews bool
	// IgnoresFalseNews suppresses perception movement from false news.
	IgnoresFalseNews bool
	// Credibility band for agents created with this archetype.
	CredibilityMin, CredibilityMax float64
}

var behaviors = map[Archetype]Behavior{
	Susceptible: {
		Weights:        Weights{Alignment: 0.1, NewsCredibility: 0.3, AgentCredibility: 0.6},
		CredibilityMin: 0.6,
		CredibilityMax: 0.9,
	},
	Skeptic: {
		Weights:          Weights{Alignment: 0.3, NewsCredibility: 0.6, AgentCredibility: 0.1},
		RejectsFalseNews: true,
		IgnoresFalseNews: true,
		CredibilityMin:   0.1,
		CredibilityMax:   0.3,
	},
}

// BehaviorFor returns the behaviour table of a user archetype. Source
// archetypes have none.
func BehaviorFor(a Archetype) (Behavior, bool) {
	b, ok := behaviors[a]
	return b, ok
}

// Alignment is 1 when the news stance agrees with the agent's in-group /
// out-group view and 0 when it opposes it.
func Alignment(agentParty Party, news *News) float64 {
	return (1 + float64(news.GetPolarity())*news.GetParty().Sign()*agentParty.Sign()) / 2
}

// ShareProbability computes clamp(w_m*m + w_f*f + w_c*c, 0, 1).
func ShareProbability(agentParty Party, agentCredibility float64, news *News, w Weights) float64 {
	p := w.Alignment*Alignment(agentParty, news) +
		w.NewsCredibility*news.GetCredibility() +
		w.AgentCredibility*agentCredibility
	return Clamp(p, 0, 1)
}

// UpdatedPerception returns the new perception toward news.GetParty().
// Only news about the other party moves it.
func UpdatedPerception(old float64, agentParty Party, agentCredibility float64, news *News, alpha float64) float64 {
	x := 0.0
	if news.GetParty() != agentParty {
		x = 1
	}
	delta := x * alpha * float64(news.GetPolarity()) * agentCredibility
	return RoundTo(Clamp(old+delta, -1, 1), 2)
}

// NextArchetype evaluates the conversion thresholds against the perception
// toward the other party. The second result is false when nothing changes.
func NextArchetype(current Archetype, perceptionToOther float64, params DiffusionParams) (Archetype, bool) {
	switch current {
	case Susceptible:
		if perceptionToOther <= params.ThresholdToSkeptic {
			return Skeptic, true
		}
	case Skeptic:
		if perceptionToOther >= params.ThresholdToSusceptible {
			return Susceptible, true
		}
	}
	return current, false
}

// RescaleCredibility resets credibility for an agent converting to target.
func RescaleCredibility(target Archetype, credibility float64) float64 {
	switch target {
	case Skeptic:
		return Clamp(credibility*0.5, 0.1, 0.3)
	case Susceptible:
		return Clamp(credibility*2.0, 0.6, 0.9)
	default:
		return credibility
	}
}
