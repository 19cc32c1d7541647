package common

import (
	"github.com/MattSScott/basePlatformSOMAS/v2/pkg/agent"
	"go.uber.org/zap"
)

// IExtendedAgent is implemented by every agent placed on the grid, users
// and sources alike.
type IExtendedAgent interface {
	agent.IAgent[IExtendedAgent]

	// Getters
	GetName() string
	GetArchetype() Archetype
	GetCell() int
	CanReceiveNews() bool
	HasReceived(newsID int) bool

	SetCell(cell int)

	// News handling. Sources return ErrMissingCapability from both.
	ReceiveNews(news *News, from string) error
	ShareDecision(news *News) (bool, error)
}

// IServer is the part of the environment server agents are allowed to call.
type IServer interface {
	agent.IExposedServerFunctions[IExtendedAgent]

	// SendNews delivers news from sender to its eligible neighbours,
	// skipping the agent named upstream.
	SendNews(sender IExtendedAgent, news *News, upstream string) error
	RecordConversion(rec ConversionRecord)
	// DrawUniform returns the next value in [0,1) from the run's generator.
	DrawUniform() float64
	GetDiffusionParams() DiffusionParams
	GetPosition(cell int) (x, y int)
	GetStep() int
	Logger() *zap.Logger
}
