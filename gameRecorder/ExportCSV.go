package gameRecorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var agentHeader = []string{
	"iteration", "turn", "agent", "archetype", "party", "x", "y",
	"credibility", "perception_a", "perception_b", "received", "shared",
}

var commonHeader = []string{
	"iteration", "turn", "susceptible", "skeptic",
	"avg_perception_a", "avg_perception_b",
	"susceptible_perception_a", "susceptible_perception_b",
	"skeptic_perception_a", "skeptic_perception_b",
	"susceptible_shared", "skeptic_shared",
	"true_news_shared", "false_news_shared", "deliveries",
	"conversions_to_skeptic", "conversions_to_susceptible", "propagations",
}

// ExportToCSV writes agents.csv and common.csv into dir.
func ExportToCSV(sdr *ServerDataRecorder, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}

	var agentRows, commonRows [][]string
	for _, tr := range sdr.TurnRecords {
		for _, ar := range tr.AgentRecords {
			agentRows = append(agentRows, []string{
				strconv.Itoa(tr.IterationNumber),
				strconv.Itoa(tr.TurnNumber),
				ar.AgentName,
				ar.Archetype.String(),
				string(ar.Party),
				strconv.Itoa(ar.X),
				strconv.Itoa(ar.Y),
				ftoa(ar.Credibility),
				ftoa(ar.Perception.A),
				ftoa(ar.Perception.B),
				strconv.Itoa(ar.NewsReceived),
				strconv.Itoa(ar.NewsShared),
			})
		}
		if len(tr.AgentRecords) == 0 {
			// iteration marker turns carry no aggregates
			continue
		}
		cr := tr.CommonRecord
		commonRows = append(commonRows, []string{
			strconv.Itoa(tr.IterationNumber),
			strconv.Itoa(tr.TurnNumber),
			strconv.Itoa(cr.SusceptibleCount),
			strconv.Itoa(cr.SkepticCount),
			ftoa(cr.AvgPerceptionA),
			ftoa(cr.AvgPerceptionB),
			ftoa(cr.SusceptiblePerceptionA),
			ftoa(cr.SusceptiblePerceptionB),
			ftoa(cr.SkepticPerceptionA),
			ftoa(cr.SkepticPerceptionB),
			strconv.Itoa(cr.SusceptibleShared),
			strconv.Itoa(cr.SkepticShared),
			strconv.Itoa(cr.StepCounters.TrueNewsShared),
			strconv.Itoa(cr.StepCounters.FalseNewsShared),
			strconv.Itoa(cr.StepCounters.Deliveries),
			strconv.Itoa(cr.TotalCounters.ConversionsToSkeptic),
			strconv.Itoa(cr.TotalCounters.ConversionsToSusceptible),
			strconv.Itoa(cr.Propagations),
		})
	}

	if err := writeCSV(filepath.Join(dir, "agents.csv"), agentHeader, agentRows); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "common.csv"), commonHeader, commonRows)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
