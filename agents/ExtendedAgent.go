package agents

import (
	"github.com/MattSScott/basePlatformSOMAS/v2/pkg/agent"

	common "github.com/harryknee/NewsDiffusion/common"
)

// ExtendedAgent is the part shared by user and source agents: platform
// identity, server access, name and grid cell.
type ExtendedAgent struct {
	*agent.BaseAgent[common.IExtendedAgent]
	Server common.IServer

	name string
	cell int
}

func GetBaseAgents(serv common.IServer, name string) *ExtendedAgent {
	return &ExtendedAgent{
		BaseAgent: agent.CreateBaseAgent[common.IExtendedAgent](serv),
		Server:    serv,
		name:      name,
		cell:      -1,
	}
}

// GetName returns the stable identifier used in logs, records and routing.
func (ea *ExtendedAgent) GetName() string { return ea.name }

func (ea *ExtendedAgent) GetCell() int { return ea.cell }

func (ea *ExtendedAgent) SetCell(cell int) { ea.cell = cell }

func (ea *ExtendedAgent) GetPosition() (int, int) {
	return ea.Server.GetPosition(ea.cell)
}
