package gameRecorder

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harryknee/NewsDiffusion/common"
)

type TurnRecord struct {
	TurnNumber      int
	IterationNumber int
	AgentRecords    []AgentRecord
	CommonRecord    CommonRecord
	Propagations    []common.PropagationRecord
}

// turn record constructor
func NewTurnRecord(turnNumber int, iterationNumber int) TurnRecord {
	return TurnRecord{
		TurnNumber:      turnNumber,
		IterationNumber: iterationNumber,
	}
}

// --------- Server Recording Functions ---------
type ServerDataRecorder struct {
	RunID       uuid.UUID
	TurnRecords []TurnRecord // where all our info is stored!

	currentIteration int
	currentTurn      int
}

func (sdr *ServerDataRecorder) GetCurrentTurnRecord() *TurnRecord {
	if len(sdr.TurnRecords) == 0 {
		return nil
	}
	return &sdr.TurnRecords[len(sdr.TurnRecords)-1]
}

func CreateRecorder() *ServerDataRecorder {
	return &ServerDataRecorder{
		RunID:            uuid.New(),
		TurnRecords:      []TurnRecord{},
		currentIteration: -1, // to start from 0
		currentTurn:      -1,
	}
}

func (sdr *ServerDataRecorder) RecordNewIteration() {
	sdr.currentIteration += 1
	sdr.currentTurn = 0

	// turn zero marks the start of the iteration and carries no records
	sdr.TurnRecords = append(sdr.TurnRecords, NewTurnRecord(sdr.currentTurn, sdr.currentIteration))
}

func (sdr *ServerDataRecorder) RecordNewTurn(agentRecords []AgentRecord, commonRecord CommonRecord, propagations []common.PropagationRecord) {
	if sdr.currentIteration < 0 {
		sdr.RecordNewIteration()
	}
	sdr.currentTurn += 1
	record := NewTurnRecord(sdr.currentTurn, sdr.currentIteration)

	for i := range agentRecords {
		agentRecords[i].TurnNumber = record.TurnNumber
		agentRecords[i].IterationNumber = record.IterationNumber
	}
	commonRecord.TurnNumber = record.TurnNumber
	commonRecord.IterationNumber = record.IterationNumber

	record.AgentRecords = agentRecords
	record.CommonRecord = commonRecord
	// the server clears its log every step, keep our own copy
	record.Propagations = append([]common.PropagationRecord(nil), propagations...)
	sdr.TurnRecords = append(sdr.TurnRecords, record)
}

func (sdr *ServerDataRecorder) CurrentTurn() int      { return sdr.currentTurn }
func (sdr *ServerDataRecorder) CurrentIteration() int { return sdr.currentIteration }

func (sdr *ServerDataRecorder) GamePlaybackSummary(logger *zap.Logger) {
	logger.Info("playback summary", zap.Stringer("run", sdr.RunID), zap.Int("turn_records", len(sdr.TurnRecords)))
	for _, turnRecord := range sdr.TurnRecords {
		// Sort agent records by name for consistent ordering
		sort.Slice(turnRecord.AgentRecords, func(i, j int) bool {
			return turnRecord.AgentRecords[i].AgentName < turnRecord.AgentRecords[j].AgentName
		})
		cr := turnRecord.CommonRecord
		logger.Info("turn",
			zap.Int("iteration", turnRecord.IterationNumber),
			zap.Int("turn", turnRecord.TurnNumber),
			zap.Int("susceptible", cr.SusceptibleCount),
			zap.Int("skeptic", cr.SkepticCount),
			zap.Float64("avg_perception_a", cr.AvgPerceptionA),
			zap.Float64("avg_perception_b", cr.AvgPerceptionB),
			zap.Int("propagations", cr.Propagations),
		)
		for _, agentRecord := range turnRecord.AgentRecords {
			logger.Debug("agent",
				zap.String("name", agentRecord.AgentName),
				zap.Stringer("archetype", agentRecord.Archetype),
				zap.Float64("perception_a", agentRecord.Perception.A),
				zap.Float64("perception_b", agentRecord.Perception.B),
			)
		}
	}
}
