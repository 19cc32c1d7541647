package environmentServer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/harryknee/NewsDiffusion/common"
)

func TestPendingNewsIsSharedOnTheNextStep(t *testing.T) {
	serv := newEmptyServer(t, 2, 1)
	a := addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 0)
	b := addUser(t, serv, "S1", common.PartyB, common.Susceptible, 0.9, 1)

	// 0.95 is above a's share probability of 0.88
	serv.SetRand(newFixedRand(0.95))
	news := mint(t, serv, common.PartyA, common.For, true, 0.8)
	require.NoError(t, a.ReceiveNews(news, ""))
	require.False(t, a.HasShared(news.GetID()))
	require.False(t, b.HasReceived(news.GetID()))

	serv.SetRand(newFixedRand(0))
	require.NoError(t, serv.Step())

	assert.Equal(t, 1, serv.GetStep())
	assert.InDelta(t, 0.09, b.GetPerception().A, 1e-9)
	assert.Equal(t, 0.0, a.GetPerception().A)
	assert.Equal(t, []string{"S1"}, receivers(serv.GetPropagationLog()))
	assert.Equal(t, "S0", b.GetReceivedFrom(news.GetID()))
	assert.Equal(t, common.Counters{TrueNewsShared: 2, Deliveries: 1}, serv.GetStepCounters())

	rec := serv.DataRecorder.GetCurrentTurnRecord()
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.TurnNumber)
	assert.Len(t, rec.AgentRecords, 2)
	assert.Len(t, rec.Propagations, 1)
	assert.Equal(t, 2, rec.CommonRecord.SusceptibleCount)
	assert.InDelta(t, 0.045, rec.CommonRecord.AvgPerceptionA, 1e-9)

	// nothing left to decide on
	require.NoError(t, serv.Step())
	assert.Empty(t, serv.GetPropagationLog())
	assert.Equal(t, common.Counters{}, serv.GetStepCounters())
	assert.Equal(t, common.Counters{TrueNewsShared: 2, Deliveries: 1}, serv.GetTotals())
}

func TestSkepticHoldsFalseNews(t *testing.T) {
	serv := newEmptyServer(t, 2, 1)
	serv.SetRand(newFixedRand(0))
	k := addUser(t, serv, "K0", common.PartyA, common.Skeptic, 0.2, 0)
	s := addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 1)

	news := mint(t, serv, common.PartyB, common.Against, false, 0.2)
	require.NoError(t, k.ReceiveNews(news, ""))

	share, err := k.ShareDecision(news)
	require.NoError(t, err)
	assert.False(t, share)
	assert.Equal(t, common.Perception{}, k.GetPerception())

	for i := 0; i < 5; i++ {
		require.NoError(t, serv.Step())
	}
	assert.False(t, s.HasReceived(news.GetID()))
	assert.False(t, k.HasShared(news.GetID()))
	assert.Equal(t, 0, serv.GetTotals().FalseNewsShared)
}

func TestRepeatedOpposingNewsConvertsToSkeptic(t *testing.T) {
	serv := newEmptyServer(t, 1, 1)
	serv.SetRand(newFixedRand(0.999))
	ua := addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 0)

	for i := 0; i < 4; i++ {
		require.NoError(t, ua.ReceiveNews(mint(t, serv, common.PartyB, common.Against, true, 0.5), ""))
	}

	assert.Equal(t, -0.36, ua.GetPerception().B)
	assert.Equal(t, common.Skeptic, ua.GetArchetype())
	assert.Equal(t, 0.3, ua.GetCredibility())
	assert.Equal(t, 1, serv.GetStepCounters().ConversionsToSkeptic)
	assert.Equal(t, 1, serv.GetTotals().ConversionsToSkeptic)

	conversions := serv.GetConversionLog()
	require.Len(t, conversions, 1)
	assert.Equal(t, common.ConversionRecord{
		Step:           0,
		AgentID:        "S0",
		OldArchetype:   common.Susceptible,
		NewArchetype:   common.Skeptic,
		Party:          common.PartyA,
		X:              0,
		Y:              0,
		Perception:     -0.36,
		NewCredibility: 0.3,
	}, conversions[0])

	require.NoError(t, serv.Step())
	assert.Equal(t, 0, serv.GetStepCounters().ConversionsToSkeptic)
	assert.Equal(t, 1, serv.GetTotals().ConversionsToSkeptic)
	assert.Len(t, serv.GetConversionLog(), 1)
}

func TestSameSeedSameTrajectory(t *testing.T) {
	cfg := smallRunConfig()
	first, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)
	second, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)

	require.Equal(t, first.Snapshot(), second.Snapshot())
	for i := 0; i < 15; i++ {
		require.NoError(t, first.Step())
		require.NoError(t, second.Step())
		require.Equal(t, first.GetPropagationLog(), second.GetPropagationLog(), "step %d", i+1)
		require.Equal(t, first.Snapshot(), second.Snapshot(), "step %d", i+1)
	}
	assert.Equal(t, first.GetTotals(), second.GetTotals())
	assert.Equal(t, first.GetConversionLog(), second.GetConversionLog())
}

func TestDifferentSeedDifferentPlacement(t *testing.T) {
	cfg := smallRunConfig()
	first, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)
	cfg.Seed++
	second, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)

	cells := func(s *EnvironmentServer) []int {
		var out []int
		for _, ua := range s.UserAgents() {
			out = append(out, ua.GetCell())
		}
		return out
	}
	assert.NotEqual(t, cells(first), cells(second))
}

func TestSourceScheduleMintsEveryInterval(t *testing.T) {
	cfg := smallRunConfig()
	serv, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)
	start := len(serv.Sources()[0].GetOutbox())

	for i := 0; i < 6; i++ {
		require.NoError(t, serv.Step())
	}
	for _, src := range serv.Sources() {
		assert.Len(t, src.GetOutbox(), start+2)
	}
}

func TestPopulationInvariantsHoldOverARun(t *testing.T) {
	cfg := smallRunConfig()
	serv, err := MakeEnvServer(cfg, nil)
	require.NoError(t, err)

	users := len(serv.UserAgents())
	for i := 0; i < 20; i++ {
		require.NoError(t, serv.Step())
		assert.Len(t, serv.UserAgents(), users)
		for _, ua := range serv.UserAgents() {
			p := ua.GetPerception()
			assert.True(t, p.A >= -1 && p.A <= 1 && p.B >= -1 && p.B <= 1)
			assert.True(t, ua.CanReceiveNews())
			for _, id := range ua.GetSharedIDs() {
				assert.True(t, ua.HasReceived(id))
			}
		}
	}
}
