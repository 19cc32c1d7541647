package gameRecorder

import (
	"github.com/harryknee/NewsDiffusion/common"
	"gonum.org/v1/gonum/stat"
)

// CommonRecord holds the model-level aggregates of one turn.
type CommonRecord struct {
	TurnNumber      int
	IterationNumber int

	SusceptibleCount int
	SkepticCount     int

	// average perception toward each party, over all user agents
	AvgPerceptionA float64
	AvgPerceptionB float64
	// per archetype
	SusceptiblePerceptionA float64
	SusceptiblePerceptionB float64
	SkepticPerceptionA     float64
	SkepticPerceptionB     float64

	// news shared so far, by the sharer's current archetype
	SusceptibleShared int
	SkepticShared     int

	StepCounters  common.Counters
	TotalCounters common.Counters
	Propagations  int
}

func NewCommonRecord(turnNumber int, iterationNumber int, agentRecords []AgentRecord, step common.Counters, totals common.Counters, propagations int) CommonRecord {
	rec := CommonRecord{
		TurnNumber:      turnNumber,
		IterationNumber: iterationNumber,
		StepCounters:    step,
		TotalCounters:   totals,
		Propagations:    propagations,
	}

	var allA, allB []float64
	byArchetype := map[common.Archetype][2][]float64{}
	for _, ar := range agentRecords {
		allA = append(allA, ar.Perception.A)
		allB = append(allB, ar.Perception.B)
		cols := byArchetype[ar.Archetype]
		cols[0] = append(cols[0], ar.Perception.A)
		cols[1] = append(cols[1], ar.Perception.B)
		byArchetype[ar.Archetype] = cols

		switch ar.Archetype {
		case common.Susceptible:
			rec.SusceptibleCount++
			rec.SusceptibleShared += ar.NewsShared
		case common.Skeptic:
			rec.SkepticCount++
			rec.SkepticShared += ar.NewsShared
		}
	}

	rec.AvgPerceptionA = mean(allA)
	rec.AvgPerceptionB = mean(allB)
	rec.SusceptiblePerceptionA = mean(byArchetype[common.Susceptible][0])
	rec.SusceptiblePerceptionB = mean(byArchetype[common.Susceptible][1])
	rec.SkepticPerceptionA = mean(byArchetype[common.Skeptic][0])
	rec.SkepticPerceptionB = mean(byArchetype[common.Skeptic][1])
	return rec
}

// mean of an empty population is reported as 0
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
