package common

// PropagationRecord is one successful delivery. The log is observational
// only and is never consulted for behaviour.
type PropagationRecord struct {
	SenderID          string    `json:"sender_id"`
	SenderArchetype   Archetype `json:"sender_archetype"`
	ReceiverID        string    `json:"receiver_id"`
	ReceiverArchetype Archetype `json:"receiver_archetype"`
	NewsID            int       `json:"news_id"`
	NewsParty         Party     `json:"news_party"`
	NewsVeracity      bool      `json:"news_veracity"`
}

// ConversionRecord is appended to the audit log each time an agent changes
// archetype.
type ConversionRecord struct {
	Step           int       `json:"step"`
	AgentID        string    `json:"agent_id"`
	OldArchetype   Archetype `json:"old_archetype"`
	NewArchetype   Archetype `json:"new_archetype"`
	Party          Party     `json:"party"`
	X              int       `json:"x"`
	Y              int       `json:"y"`
	Perception     float64   `json:"perception"`
	NewCredibility float64   `json:"new_credibility"`
}

// Counters are the global diffusion counters. The zero value is a valid,
// empty set of counts.
type Counters struct {
	TrueNewsShared           int `json:"true_news_shared"`
	FalseNewsShared          int `json:"false_news_shared"`
	ConversionsToSkeptic     int `json:"conversions_to_skeptic"`
	ConversionsToSusceptible int `json:"conversions_to_susceptible"`
	Deliveries               int `json:"deliveries"`
}

func (c *Counters) CountShare(news *News) {
	if news.GetVeracity() {
		c.TrueNewsShared++
	} else {
		c.FalseNewsShared++
	}
}

func (c *Counters) CountConversion(to Archetype) {
	switch to {
	case Skeptic:
		c.ConversionsToSkeptic++
	case Susceptible:
		c.ConversionsToSusceptible++
	}
}
