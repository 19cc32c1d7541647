package environmentServer

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	agents "github.com/harryknee/NewsDiffusion/agents"
	common "github.com/harryknee/NewsDiffusion/common"
)

// PopulateGrid creates the configured population and places it on a seeded
// permutation of the free grid slots: Susceptibles (S0..), Skeptics (K0..),
// then Bots (BOT0..) and NewsReels (NR0..).
func (cs *EnvironmentServer) PopulateGrid() error {
	slots := cs.grid.Slots()
	if need := cs.config.Population(); need > len(slots) {
		return fmt.Errorf("%w: %d agents, %d free slots", common.ErrGridCapacity, need, len(slots))
	}
	perm := cs.rng.Perm(len(slots))
	next := 0
	nextCell := func() int {
		cell := slots[perm[next]]
		next++
		return cell
	}

	for i := 0; i < cs.config.NumSusceptible; i++ {
		if _, err := cs.AddUserAgent(cs.newUserConfig(fmt.Sprintf("S%d", i), common.Susceptible), nextCell()); err != nil {
			return err
		}
	}
	for i := 0; i < cs.config.NumSkeptic; i++ {
		if _, err := cs.AddUserAgent(cs.newUserConfig(fmt.Sprintf("K%d", i), common.Skeptic), nextCell()); err != nil {
			return err
		}
	}
	for i := 0; i < cs.config.NumBots; i++ {
		if _, err := cs.AddSource(common.Bot, fmt.Sprintf("BOT%d", i), nextCell()); err != nil {
			return err
		}
	}
	for i := 0; i < cs.config.NumNewsReels; i++ {
		if _, err := cs.AddSource(common.NewsReel, fmt.Sprintf("NR%d", i), nextCell()); err != nil {
			return err
		}
	}
	return nil
}

// newUserConfig draws party and credibility for a fresh user agent.
func (cs *EnvironmentServer) newUserConfig(name string, archetype common.Archetype) agents.AgentConfig {
	behavior, _ := common.BehaviorFor(archetype)
	party := common.Parties[cs.rng.Intn(len(common.Parties))]
	credibility := distuv.Uniform{Min: behavior.CredibilityMin, Max: behavior.CredibilityMax, Src: cs.rng}.Rand()
	return agents.AgentConfig{
		Name:        name,
		Party:       party,
		Archetype:   archetype,
		Credibility: credibility,
	}
}

func (cs *EnvironmentServer) register(a common.IExtendedAgent, cell int) error {
	if _, exists := cs.byName[a.GetName()]; exists {
		return fmt.Errorf("%w: duplicate agent name %s", common.ErrInvalidConfig, a.GetName())
	}
	if err := cs.grid.Place(a, cell); err != nil {
		return err
	}
	cs.byName[a.GetName()] = a
	cs.AddAgent(a)
	return nil
}

// AddUserAgent creates a user agent from cfg and places it at cell.
func (cs *EnvironmentServer) AddUserAgent(cfg agents.AgentConfig, cell int) (*agents.UserAgent, error) {
	ua, err := agents.CreateUserAgent(cs, cfg)
	if err != nil {
		return nil, err
	}
	if err := cs.register(ua, cell); err != nil {
		return nil, err
	}
	cs.userAgents = append(cs.userAgents, ua)
	return ua, nil
}

func (cs *EnvironmentServer) AddSource(archetype common.Archetype, name string, cell int) (*agents.SourceAgent, error) {
	var src *agents.SourceAgent
	switch archetype {
	case common.Bot:
		src = agents.CreateBot(cs, name, cs.factory)
	case common.NewsReel:
		src = agents.CreateNewsReel(cs, name, cs.factory)
	default:
		return nil, fmt.Errorf("%w: %v is not a source archetype", common.ErrInvalidConfig, archetype)
	}
	if err := cs.register(src, cell); err != nil {
		return nil, err
	}
	cs.sources = append(cs.sources, src)
	return src, nil
}

// LaunchSources has every source mint its initial news and broadcast it.
func (cs *EnvironmentServer) LaunchSources() error {
	for _, src := range cs.sources {
		for i := 0; i < cs.config.NewsPerSource; i++ {
			if _, err := src.CreateNews(); err != nil {
				return err
			}
		}
		if err := src.Broadcast(); err != nil {
			return err
		}
	}
	return nil
}

// SeedNews mints n random news items and hands each to one or two distinct
// random user agents.
func (cs *EnvironmentServer) SeedNews(n int) error {
	if len(cs.userAgents) == 0 || n <= 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		news, err := cs.factory.Mint(common.NewsOptions{})
		if err != nil {
			return err
		}
		k := min(len(cs.userAgents), 1+cs.rng.Intn(2))
		for _, idx := range cs.rng.Perm(len(cs.userAgents))[:k] {
			target := cs.userAgents[idx]
			cs.logger.Debug("seeding news", zap.Int("news", news.GetID()), zap.String("agent", target.GetName()))
			if err := target.ReceiveNews(news, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// MintNews exposes the run's factory to external seeding collaborators.
func (cs *EnvironmentServer) MintNews(opts common.NewsOptions) (*common.News, error) {
	return cs.factory.Mint(opts)
}
