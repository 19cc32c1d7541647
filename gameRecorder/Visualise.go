package gameRecorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/harryknee/NewsDiffusion/common"
)

// CreatePlaybackHTML renders the recorded run as a single HTML page.
func CreatePlaybackHTML(sdr *ServerDataRecorder, path string) (err error) {
	var labels []string
	var perceptionA, perceptionB, susceptibleShared, skepticShared, trueShared, falseShared []opts.LineData
	var last *TurnRecord

	for i := range sdr.TurnRecords {
		tr := &sdr.TurnRecords[i]
		if len(tr.AgentRecords) == 0 {
			continue
		}
		last = tr
		cr := tr.CommonRecord
		labels = append(labels, fmt.Sprintf("%d:%d", tr.IterationNumber, tr.TurnNumber))
		perceptionA = append(perceptionA, opts.LineData{Value: cr.AvgPerceptionA})
		perceptionB = append(perceptionB, opts.LineData{Value: cr.AvgPerceptionB})
		susceptibleShared = append(susceptibleShared, opts.LineData{Value: cr.SusceptibleShared})
		skepticShared = append(skepticShared, opts.LineData{Value: cr.SkepticShared})
		trueShared = append(trueShared, opts.LineData{Value: cr.StepCounters.TrueNewsShared})
		falseShared = append(falseShared, opts.LineData{Value: cr.StepCounters.FalseNewsShared})
	}

	perception := charts.NewLine()
	perception.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Average perception by party"}))
	perception.SetXAxis(labels).
		AddSeries("AvgPerception_A", perceptionA).
		AddSeries("AvgPerception_B", perceptionB)

	shared := charts.NewLine()
	shared.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "News shared"}))
	shared.SetXAxis(labels).
		AddSeries("Susceptible Shared", susceptibleShared).
		AddSeries("Skeptic Shared", skepticShared).
		AddSeries("True news shared (step)", trueShared).
		AddSeries("False news shared (step)", falseShared)

	page := components.NewPage()
	page.AddCharts(perception, shared)
	if last != nil {
		page.AddCharts(positionScatter(last))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create playback dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playback file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close playback file: %w", cerr)
		}
	}()
	return page.Render(f)
}

func positionScatter(tr *TurnRecord) *charts.Scatter {
	points := map[common.Archetype][]opts.ScatterData{}
	for _, ar := range tr.AgentRecords {
		points[ar.Archetype] = append(points[ar.Archetype], opts.ScatterData{Value: []int{ar.X, ar.Y}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Agents at turn %d", tr.TurnNumber)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	for _, a := range []common.Archetype{common.Susceptible, common.Skeptic} {
		scatter.AddSeries(a.String(), points[a])
	}
	return scatter
}
