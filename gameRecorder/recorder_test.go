package gameRecorder

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harryknee/NewsDiffusion/common"
)

func sampleAgents() []AgentRecord {
	return []AgentRecord{
		{AgentName: "S0", Archetype: common.Susceptible, Party: common.PartyA, Perception: common.Perception{A: 0.2, B: -0.4}, NewsShared: 2},
		{AgentName: "S1", Archetype: common.Susceptible, Party: common.PartyB, Perception: common.Perception{A: 0.4, B: 0}, NewsShared: 1},
		{AgentName: "K0", Archetype: common.Skeptic, Party: common.PartyA, Perception: common.Perception{A: -0.3, B: 0.5}, NewsShared: 4},
	}
}

func TestNewCommonRecord(t *testing.T) {
	step := common.Counters{TrueNewsShared: 2, Deliveries: 5}
	totals := common.Counters{TrueNewsShared: 9, FalseNewsShared: 1, Deliveries: 20}
	rec := NewCommonRecord(3, 0, sampleAgents(), step, totals, 5)

	assert.Equal(t, 2, rec.SusceptibleCount)
	assert.Equal(t, 1, rec.SkepticCount)
	assert.InDelta(t, 0.1, rec.AvgPerceptionA, 1e-12)
	assert.InDelta(t, 0.1/3, rec.AvgPerceptionB, 1e-12)
	assert.InDelta(t, 0.3, rec.SusceptiblePerceptionA, 1e-12)
	assert.InDelta(t, -0.2, rec.SusceptiblePerceptionB, 1e-12)
	assert.InDelta(t, -0.3, rec.SkepticPerceptionA, 1e-12)
	assert.Equal(t, 3, rec.SusceptibleShared)
	assert.Equal(t, 4, rec.SkepticShared)
	assert.Equal(t, step, rec.StepCounters)
	assert.Equal(t, totals, rec.TotalCounters)
}

func TestNewCommonRecordWithoutAgents(t *testing.T) {
	rec := NewCommonRecord(0, 0, nil, common.Counters{}, common.Counters{}, 0)
	assert.Equal(t, 0.0, rec.AvgPerceptionA)
	assert.Equal(t, 0.0, rec.SkepticPerceptionB)
}

func recordRun(turns int) *ServerDataRecorder {
	sdr := CreateRecorder()
	sdr.RecordNewIteration()
	for i := 0; i < turns; i++ {
		agents := sampleAgents()
		sdr.RecordNewTurn(agents, NewCommonRecord(0, 0, agents, common.Counters{}, common.Counters{}, 1),
			[]common.PropagationRecord{{SenderID: "S0", ReceiverID: "S1", NewsID: i}})
	}
	return sdr
}

func TestRecorderNumbersTurns(t *testing.T) {
	sdr := recordRun(3)

	require.Len(t, sdr.TurnRecords, 4)
	assert.Equal(t, 0, sdr.CurrentIteration())
	assert.Equal(t, 3, sdr.CurrentTurn())

	last := sdr.GetCurrentTurnRecord()
	require.NotNil(t, last)
	assert.Equal(t, 3, last.TurnNumber)
	assert.Equal(t, 3, last.CommonRecord.TurnNumber)
	for _, ar := range last.AgentRecords {
		assert.Equal(t, 3, ar.TurnNumber)
	}
	assert.Equal(t, 2, last.Propagations[0].NewsID)

	sdr.GamePlaybackSummary(zap.NewNop())
}

func TestRecordNewTurnStartsAnIteration(t *testing.T) {
	sdr := CreateRecorder()
	assert.Nil(t, sdr.GetCurrentTurnRecord())
	sdr.RecordNewTurn(nil, CommonRecord{}, nil)
	assert.Equal(t, 0, sdr.CurrentIteration())
	assert.Equal(t, 1, sdr.CurrentTurn())
}

func TestExportToCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	require.NoError(t, ExportToCSV(recordRun(2), dir))

	readAll := func(name string) [][]string {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		return rows
	}

	agentRows := readAll("agents.csv")
	assert.Equal(t, agentHeader, agentRows[0])
	assert.Len(t, agentRows, 1+2*3)

	commonRows := readAll("common.csv")
	assert.Equal(t, commonHeader, commonRows[0])
	assert.Len(t, commonRows, 1+2)
}

func TestCreatePlaybackHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "playback.html")
	require.NoError(t, CreatePlaybackHTML(recordRun(2), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Average perception by party")
	assert.Contains(t, string(raw), "News shared")
}

func TestExportErrorsAreReturned(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	assert.Error(t, ExportToCSV(recordRun(1), blocker))
	assert.Error(t, CreatePlaybackHTML(recordRun(1), filepath.Join(blocker, "playback.html")))

	dir := t.TempDir()
	assert.Error(t, CreatePlaybackHTML(recordRun(1), dir))
}

func TestWriteCSVFlushesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, writeCSV(path, []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(raw))
}
