package environmentServer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	agents "github.com/harryknee/NewsDiffusion/agents"
	common "github.com/harryknee/NewsDiffusion/common"
	config "github.com/harryknee/NewsDiffusion/config"
)

// fixedRand returns the same uniform draw every time and defers every
// other draw to a seeded generator.
type fixedRand struct {
	*rand.Rand
	value float64
}

func (f *fixedRand) Float64() float64 { return f.value }

func newFixedRand(value float64) *fixedRand {
	return &fixedRand{Rand: rand.New(rand.NewSource(1)), value: value}
}

func emptyConfig(width, height int) config.SimulationConfig {
	cfg := config.Default()
	cfg.Width, cfg.Height = width, height
	cfg.Torus = false
	cfg.NumSusceptible, cfg.NumSkeptic, cfg.NumBots, cfg.NumNewsReels = 0, 0, 0, 0
	cfg.InitialNews = 0
	return cfg
}

func newEmptyServer(t *testing.T, width, height int) *EnvironmentServer {
	t.Helper()
	serv, err := CreateEmptyEnvServer(emptyConfig(width, height), zap.NewNop())
	require.NoError(t, err)
	return serv
}

func addUser(t *testing.T, serv *EnvironmentServer, name string, party common.Party, archetype common.Archetype, credibility float64, cell int) *agents.UserAgent {
	t.Helper()
	ua, err := serv.AddUserAgent(agents.AgentConfig{Name: name, Party: party, Archetype: archetype, Credibility: credibility}, cell)
	require.NoError(t, err)
	return ua
}

func mint(t *testing.T, serv *EnvironmentServer, party common.Party, polarity common.Polarity, veracity bool, credibility float64) *common.News {
	t.Helper()
	n, err := serv.MintNews(common.NewsOptions{
		Party:       common.Ptr(party),
		Polarity:    common.Ptr(polarity),
		Veracity:    common.Ptr(veracity),
		Credibility: common.Ptr(credibility),
	})
	require.NoError(t, err)
	return n
}

func smallRunConfig() config.SimulationConfig {
	cfg := config.Default()
	cfg.Width, cfg.Height = 8, 8
	cfg.NumSusceptible, cfg.NumSkeptic = 20, 10
	cfg.NumBots, cfg.NumNewsReels = 2, 2
	cfg.InitialNews = 6
	cfg.SourceInterval = 3
	cfg.Seed = 2024
	return cfg
}
