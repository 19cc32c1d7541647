package environmentServer

import (
	"fmt"

	"github.com/MattSScott/basePlatformSOMAS/v2/pkg/server"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	agents "github.com/harryknee/NewsDiffusion/agents"
	common "github.com/harryknee/NewsDiffusion/common"
	config "github.com/harryknee/NewsDiffusion/config"
	gameRecorder "github.com/harryknee/NewsDiffusion/gameRecorder"
)

// EnvironmentServer owns the grid, the population and the run's generator,
// and drives the step loop. Steps are single threaded: one step is one
// ordered sweep over the user agents.
type EnvironmentServer struct {
	*server.BaseServer[common.IExtendedAgent]

	config  config.SimulationConfig
	logger  *zap.Logger
	rng     common.RandSource
	factory *common.NewsFactory
	grid    *Grid

	userAgents []*agents.UserAgent
	sources    []*agents.SourceAgent
	byName     map[string]common.IExtendedAgent

	step int
	// step scoped, reset at the start of every step
	propagationLog []common.PropagationRecord
	stepCounters   common.Counters
	// run scoped
	totals      common.Counters
	conversions []common.ConversionRecord

	DataRecorder *gameRecorder.ServerDataRecorder
}

// CreateEmptyEnvServer validates cfg and builds a server with an empty grid.
func CreateEmptyEnvServer(cfg config.SimulationConfig, logger *zap.Logger) (*EnvironmentServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	serv := &EnvironmentServer{
		BaseServer: server.CreateBaseServer[common.IExtendedAgent](
			cfg.Iterations,
			cfg.Turns,
			cfg.MaxDuration,
			cfg.MessageBandwidth),
		config:       cfg,
		logger:       logger,
		rng:          rng,
		factory:      common.NewNewsFactory(rng),
		grid:         NewGrid(cfg.Width, cfg.Height, cfg.Torus, cfg.MaxAgentsPerCell),
		byName:       make(map[string]common.IExtendedAgent),
		DataRecorder: gameRecorder.CreateRecorder(),
	}
	serv.SetGameRunner(serv)
	return serv, nil
}

// MakeEnvServer builds a ready-to-run server: population placed, sources
// broadcasting and the initial news seeded.
func MakeEnvServer(cfg config.SimulationConfig, logger *zap.Logger) (*EnvironmentServer, error) {
	serv, err := CreateEmptyEnvServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := serv.PopulateGrid(); err != nil {
		return nil, err
	}
	if err := serv.LaunchSources(); err != nil {
		return nil, err
	}
	if err := serv.SeedNews(cfg.InitialNews); err != nil {
		return nil, err
	}
	serv.logger.Info("server ready",
		zap.Int("susceptible", cfg.NumSusceptible),
		zap.Int("skeptic", cfg.NumSkeptic),
		zap.Int("bots", cfg.NumBots),
		zap.Int("news_reels", cfg.NumNewsReels),
		zap.Uint64("seed", cfg.Seed),
		zap.Stringer("run", serv.DataRecorder.RunID),
	)
	return serv, nil
}

// ----------------------- Exposed to agents -----------------------

func (cs *EnvironmentServer) DrawUniform() float64 { return cs.rng.Float64() }

func (cs *EnvironmentServer) GetDiffusionParams() common.DiffusionParams {
	return cs.config.Diffusion
}

func (cs *EnvironmentServer) GetPosition(cell int) (int, int) { return cs.grid.Position(cell) }

func (cs *EnvironmentServer) GetStep() int { return cs.step }

func (cs *EnvironmentServer) Logger() *zap.Logger { return cs.logger }

func (cs *EnvironmentServer) RecordConversion(rec common.ConversionRecord) {
	cs.stepCounters.CountConversion(rec.NewArchetype)
	cs.totals.CountConversion(rec.NewArchetype)
	cs.conversions = append(cs.conversions, rec)
	cs.logger.Info("conversion",
		zap.String("agent", rec.AgentID),
		zap.Stringer("from", rec.OldArchetype),
		zap.Stringer("to", rec.NewArchetype),
		zap.String("party", string(rec.Party)),
		zap.Int("x", rec.X),
		zap.Int("y", rec.Y),
		zap.Float64("perception", rec.Perception),
		zap.Float64("new_credibility", rec.NewCredibility),
	)
}

// ----------------------- Read-only accessors -----------------------

func (cs *EnvironmentServer) GetConfig() config.SimulationConfig { return cs.config }
func (cs *EnvironmentServer) GetGrid() *Grid                     { return cs.grid }
func (cs *EnvironmentServer) GetStepCounters() common.Counters   { return cs.stepCounters }
func (cs *EnvironmentServer) GetTotals() common.Counters         { return cs.totals }

func (cs *EnvironmentServer) GetPropagationLog() []common.PropagationRecord {
	return append([]common.PropagationRecord(nil), cs.propagationLog...)
}

func (cs *EnvironmentServer) GetConversionLog() []common.ConversionRecord {
	return append([]common.ConversionRecord(nil), cs.conversions...)
}

// UserAgents returns the user population in creation order.
func (cs *EnvironmentServer) UserAgents() []*agents.UserAgent {
	return append([]*agents.UserAgent(nil), cs.userAgents...)
}

func (cs *EnvironmentServer) Sources() []*agents.SourceAgent {
	return append([]*agents.SourceAgent(nil), cs.sources...)
}

func (cs *EnvironmentServer) GetAgentByName(name string) (common.IExtendedAgent, bool) {
	a, ok := cs.byName[name]
	return a, ok
}

// Rand returns the run's generator, so a resumed run can continue it.
func (cs *EnvironmentServer) Rand() common.RandSource { return cs.rng }

func (cs *EnvironmentServer) SetRand(src common.RandSource) {
	cs.rng = src
	cs.factory.SetSource(src)
}

// ----------------------- Step driver -----------------------

// Step runs one sweep: every user agent, in creation order, decides on each
// received item it has not forwarded yet.
func (cs *EnvironmentServer) Step() error {
	cs.step++
	cs.propagationLog = nil
	cs.stepCounters = common.Counters{}

	if err := cs.runSourceSchedule(); err != nil {
		return err
	}

	for _, ua := range cs.userAgents {
		for _, news := range ua.PendingNews() {
			if ua.HasShared(news.GetID()) {
				continue
			}
			share, err := ua.ShareDecision(news)
			if err != nil {
				return fmt.Errorf("step %d: %w", cs.step, err)
			}
			if !share {
				continue
			}
			if err := ua.ShareNews(news); err != nil {
				return fmt.Errorf("step %d: %w", cs.step, err)
			}
		}
	}

	cs.recordTurn()
	return nil
}

func (cs *EnvironmentServer) runSourceSchedule() error {
	interval := cs.config.SourceInterval
	if interval <= 0 || cs.step%interval != 0 {
		return nil
	}
	for _, src := range cs.sources {
		if _, err := src.CreateNews(); err != nil {
			return err
		}
		if err := src.Broadcast(); err != nil {
			return err
		}
	}
	return nil
}

func (cs *EnvironmentServer) recordTurn() {
	agentRecords := make([]gameRecorder.AgentRecord, 0, len(cs.userAgents))
	for _, ua := range cs.userAgents {
		agentRecords = append(agentRecords, ua.RecordAgentStatus())
	}
	commonRecord := gameRecorder.NewCommonRecord(0, 0, agentRecords, cs.stepCounters, cs.totals, len(cs.propagationLog))
	cs.DataRecorder.RecordNewTurn(agentRecords, commonRecord, cs.propagationLog)
}

// overrides that requires implementation
func (cs *EnvironmentServer) RunTurn(i, j int) {
	if err := cs.Step(); err != nil {
		// only a logic defect (missing capability) can fail a step
		cs.logger.Fatal("step failed", zap.Int("iteration", i), zap.Int("turn", j), zap.Error(err))
	}
	cs.logger.Debug("turn complete",
		zap.Int("iteration", i),
		zap.Int("turn", j),
		zap.Int("propagations", len(cs.propagationLog)),
		zap.Int("true_news_shared", cs.stepCounters.TrueNewsShared),
		zap.Int("false_news_shared", cs.stepCounters.FalseNewsShared),
	)
}

func (cs *EnvironmentServer) RunStartOfIteration(iteration int) {
	cs.logger.Info("start of iteration", zap.Int("iteration", iteration), zap.Int("agents", len(cs.GetAgentMap())))
	cs.DataRecorder.RecordNewIteration()
}

func (cs *EnvironmentServer) RunEndOfIteration(iteration int) {
	cs.logger.Info("end of iteration",
		zap.Int("iteration", iteration),
		zap.Int("step", cs.step),
		zap.Int("conversions_to_skeptic", cs.totals.ConversionsToSkeptic),
		zap.Int("conversions_to_susceptible", cs.totals.ConversionsToSusceptible),
		zap.Int("true_news_shared", cs.totals.TrueNewsShared),
		zap.Int("false_news_shared", cs.totals.FalseNewsShared),
	)
}

// custom override
func (cs *EnvironmentServer) Start() {
	cs.BaseServer.Start()
}

// debug log printing
func (cs *EnvironmentServer) LogAgentStatus() {
	cs.logger.Info("agent status", zap.Int("users", len(cs.userAgents)), zap.Int("sources", len(cs.sources)))
	for _, ua := range cs.userAgents {
		p := ua.GetPerception()
		x, y := ua.GetPosition()
		cs.logger.Info("agent",
			zap.String("name", ua.GetName()),
			zap.Stringer("archetype", ua.GetArchetype()),
			zap.String("party", string(ua.GetParty())),
			zap.Int("x", x),
			zap.Int("y", y),
			zap.Float64("credibility", ua.GetCredibility()),
			zap.Float64("perception_a", p.A),
			zap.Float64("perception_b", p.B),
			zap.Int("shared", len(ua.GetSharedIDs())),
		)
	}
}
