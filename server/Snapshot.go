package environmentServer

import (
	"fmt"
	"sort"

	agents "github.com/harryknee/NewsDiffusion/agents"
	common "github.com/harryknee/NewsDiffusion/common"
)

type NewsRecord struct {
	ID          int             `json:"id"`
	Party       common.Party    `json:"party"`
	Polarity    common.Polarity `json:"polarity"`
	Veracity    bool            `json:"veracity"`
	Credibility float64         `json:"credibility"`
}

type SourceState struct {
	Name   string `json:"name"`
	Outbox []int  `json:"outbox"`
}

// RunSnapshot is the resumable state of a run between two steps, including
// the run totals and the conversion audit log. The generator is not part of
// it; hand it over with Rand and SetRand.
type RunSnapshot struct {
	Step        int                       `json:"step"`
	NextNewsID  int                       `json:"next_news_id"`
	News        []NewsRecord              `json:"news"`
	Agents      []agents.UserAgentState   `json:"agents"`
	Sources     []SourceState             `json:"sources,omitempty"`
	Totals      common.Counters           `json:"totals"`
	Conversions []common.ConversionRecord `json:"conversions,omitempty"`
}

func (cs *EnvironmentServer) Snapshot() RunSnapshot {
	snap := RunSnapshot{
		Step:        cs.step,
		NextNewsID:  cs.factory.NextID(),
		Totals:      cs.totals,
		Conversions: cs.GetConversionLog(),
	}
	catalogue := map[int]*common.News{}
	for _, ua := range cs.userAgents {
		for _, n := range ua.GetReceivedNews() {
			catalogue[n.GetID()] = n
		}
		snap.Agents = append(snap.Agents, ua.State())
	}
	for _, src := range cs.sources {
		state := SourceState{Name: src.GetName()}
		for _, n := range src.GetOutbox() {
			catalogue[n.GetID()] = n
			state.Outbox = append(state.Outbox, n.GetID())
		}
		snap.Sources = append(snap.Sources, state)
	}
	for _, n := range catalogue {
		snap.News = append(snap.News, NewsRecord{
			ID:          n.GetID(),
			Party:       n.GetParty(),
			Polarity:    n.GetPolarity(),
			Veracity:    n.GetVeracity(),
			Credibility: n.GetCredibility(),
		})
	}
	sort.Slice(snap.News, func(i, j int) bool { return snap.News[i].ID < snap.News[j].ID })
	return snap
}

// Restore loads snap into a server built from the same configuration. Every
// user agent must be present in the snapshot exactly once. The whole snapshot
// is checked before anything is applied, so a rejected snapshot leaves the
// server as it was.
func (cs *EnvironmentServer) Restore(snap RunSnapshot) error {
	if len(snap.Agents) != len(cs.userAgents) {
		return fmt.Errorf("%w: snapshot has %d user agents, server has %d",
			common.ErrSnapshotMismatch, len(snap.Agents), len(cs.userAgents))
	}

	catalogue := make(map[int]*common.News, len(snap.News))
	for _, rec := range snap.News {
		n, err := common.RestoreNews(rec.ID, rec.Party, rec.Polarity, rec.Veracity, rec.Credibility)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrSnapshotMismatch, err)
		}
		if rec.ID >= snap.NextNewsID {
			return fmt.Errorf("%w: news %d not below next id %d", common.ErrSnapshotMismatch, rec.ID, snap.NextNewsID)
		}
		catalogue[rec.ID] = n
	}

	users := make([]*agents.UserAgent, len(snap.Agents))
	seen := make(map[string]bool, len(snap.Agents))
	for i, state := range snap.Agents {
		if seen[state.Name] {
			return fmt.Errorf("%w: agent %s listed twice", common.ErrSnapshotMismatch, state.Name)
		}
		seen[state.Name] = true
		a, ok := cs.GetAgentByName(state.Name)
		if !ok {
			return fmt.Errorf("%w: unknown agent %s", common.ErrSnapshotMismatch, state.Name)
		}
		ua, ok := a.(*agents.UserAgent)
		if !ok {
			return fmt.Errorf("%w: %s is not a user agent", common.ErrSnapshotMismatch, state.Name)
		}
		if err := ua.CheckState(state, catalogue); err != nil {
			return err
		}
		users[i] = ua
	}

	sources := make([]*agents.SourceAgent, len(snap.Sources))
	outboxes := make([][]*common.News, len(snap.Sources))
	for i, state := range snap.Sources {
		a, ok := cs.GetAgentByName(state.Name)
		if !ok {
			return fmt.Errorf("%w: unknown source %s", common.ErrSnapshotMismatch, state.Name)
		}
		src, ok := a.(*agents.SourceAgent)
		if !ok {
			return fmt.Errorf("%w: %s is not a source", common.ErrSnapshotMismatch, state.Name)
		}
		for _, id := range state.Outbox {
			n, ok := catalogue[id]
			if !ok {
				return fmt.Errorf("%w: source %s minted unknown news %d", common.ErrSnapshotMismatch, state.Name, id)
			}
			outboxes[i] = append(outboxes[i], n)
		}
		sources[i] = src
	}

	for i, ua := range users {
		if err := ua.RestoreState(snap.Agents[i], catalogue); err != nil {
			// checked above
			return err
		}
	}
	for i, src := range sources {
		src.RestoreOutbox(outboxes[i])
	}

	cs.factory.SetNextID(snap.NextNewsID)
	cs.step = snap.Step
	cs.totals = snap.Totals
	cs.conversions = append([]common.ConversionRecord(nil), snap.Conversions...)
	cs.propagationLog = nil
	cs.stepCounters = common.Counters{}
	return nil
}
