package gameRecorder

import "github.com/harryknee/NewsDiffusion/common"

// AgentRecord is a record of a user agent's state at a given turn
type AgentRecord struct {
	TurnNumber      int
	IterationNumber int

	AgentName   string
	Archetype   common.Archetype
	Party       common.Party
	X, Y        int
	Credibility float64
	Perception  common.Perception

	NewsReceived int
	NewsShared   int
}
