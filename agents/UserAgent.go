package agents

import (
	"fmt"

	"go.uber.org/zap"

	common "github.com/harryknee/NewsDiffusion/common"
	gameRecorder "github.com/harryknee/NewsDiffusion/gameRecorder"
)

// AgentConfig enumerates everything a user agent is created with. The
// server resolves defaults (random party and credibility) before calling
// CreateUserAgent.
type AgentConfig struct {
	Name        string
	Party       common.Party
	Archetype   common.Archetype
	Credibility float64
	Perception  common.Perception
}

// UserAgent is a Susceptible or Skeptic user. The archetype is a tag that
// selects the behaviour table; conversion reassigns it in place.
type UserAgent struct {
	*ExtendedAgent

	party       common.Party
	archetype   common.Archetype
	credibility float64
	perception  common.Perception

	// received news in encounter order
	received     []*common.News
	receivedIDs  map[int]struct{}
	receivedFrom map[int]string
	shared       []int
	sharedIDs    map[int]struct{}
	exposure     map[int]int
}

func CreateUserAgent(serv common.IServer, cfg AgentConfig) (*UserAgent, error) {
	if !cfg.Archetype.CanReceiveNews() {
		return nil, fmt.Errorf("%w: %v is not a user archetype", common.ErrInvalidConfig, cfg.Archetype)
	}
	if !cfg.Party.Valid() {
		return nil, fmt.Errorf("%w: agent %s has party %q", common.ErrInvalidConfig, cfg.Name, cfg.Party)
	}
	if cfg.Credibility < 0 || cfg.Credibility > 1 {
		return nil, fmt.Errorf("%w: agent %s credibility %v outside [0,1]", common.ErrInvalidConfig, cfg.Name, cfg.Credibility)
	}
	ua := &UserAgent{
		ExtendedAgent: GetBaseAgents(serv, cfg.Name),
		party:         cfg.Party,
		archetype:     cfg.Archetype,
		credibility:   cfg.Credibility,
	}
	ua.perception.Set(common.PartyA, cfg.Perception.A)
	ua.perception.Set(common.PartyB, cfg.Perception.B)
	ua.resetHistory()
	return ua, nil
}

func (ua *UserAgent) resetHistory() {
	ua.received = nil
	ua.receivedIDs = make(map[int]struct{})
	ua.receivedFrom = make(map[int]string)
	ua.shared = nil
	ua.sharedIDs = make(map[int]struct{})
	ua.exposure = make(map[int]int)
}

// ----------------------- Getters -----------------------

func (ua *UserAgent) GetParty() common.Party            { return ua.party }
func (ua *UserAgent) GetArchetype() common.Archetype    { return ua.archetype }
func (ua *UserAgent) GetCredibility() float64           { return ua.credibility }
func (ua *UserAgent) GetPerception() common.Perception  { return ua.perception }
func (ua *UserAgent) CanReceiveNews() bool              { return ua.archetype.CanReceiveNews() }
func (ua *UserAgent) GetExposureCount(newsID int) int   { return ua.exposure[newsID] }
func (ua *UserAgent) GetReceivedFrom(newsID int) string { return ua.receivedFrom[newsID] }

func (ua *UserAgent) HasReceived(newsID int) bool {
	_, ok := ua.receivedIDs[newsID]
	return ok
}

func (ua *UserAgent) HasShared(newsID int) bool {
	_, ok := ua.sharedIDs[newsID]
	return ok
}

func (ua *UserAgent) GetReceivedNews() []*common.News {
	return append([]*common.News(nil), ua.received...)
}

func (ua *UserAgent) GetSharedIDs() []int {
	return append([]int(nil), ua.shared...)
}

// PendingNews lists received items not yet forwarded, in encounter order.
func (ua *UserAgent) PendingNews() []*common.News {
	var pending []*common.News
	for _, n := range ua.received {
		if !ua.HasShared(n.GetID()) {
			pending = append(pending, n)
		}
	}
	return pending
}

func (ua *UserAgent) behavior() common.Behavior {
	b, ok := common.BehaviorFor(ua.archetype)
	if !ok {
		// user archetypes always have a table
		panic(fmt.Sprintf("no behaviour table for %v", ua.archetype))
	}
	return b
}

// ----------------------- Decisions -----------------------

func (ua *UserAgent) ComputeShareProbability(news *common.News, w common.Weights) float64 {
	return common.ShareProbability(ua.party, ua.credibility, news, w)
}

// ShareDecision draws once from the run's generator, except for archetypes
// that reject false news outright.
func (ua *UserAgent) ShareDecision(news *common.News) (bool, error) {
	b := ua.behavior()
	if b.RejectsFalseNews && !news.GetVeracity() {
		return false, nil
	}
	p := ua.ComputeShareProbability(news, b.Weights)
	return ua.Server.DrawUniform() < p, nil
}

func (ua *UserAgent) UpdatePerception(news *common.News) {
	if ua.behavior().IgnoresFalseNews && !news.GetVeracity() {
		return
	}
	party := news.GetParty()
	alpha := ua.Server.GetDiffusionParams().Alpha
	ua.perception.Set(party, common.UpdatedPerception(ua.perception.Get(party), ua.party, ua.credibility, news, alpha))
}

// CheckConversion looks at the current perception toward the other party.
func (ua *UserAgent) CheckConversion() (common.Archetype, bool) {
	return common.NextArchetype(ua.archetype, ua.perception.Get(ua.party.Other()), ua.Server.GetDiffusionParams())
}

// ConvertTo switches archetype, keeping identity, party, perception and
// news history, and resets credibility for the new archetype.
func (ua *UserAgent) ConvertTo(target common.Archetype) {
	old := ua.archetype
	ua.archetype = target
	ua.credibility = common.RescaleCredibility(target, ua.credibility)

	x, y := ua.GetPosition()
	ua.Server.RecordConversion(common.ConversionRecord{
		Step:           ua.Server.GetStep(),
		AgentID:        ua.name,
		OldArchetype:   old,
		NewArchetype:   target,
		Party:          ua.party,
		X:              x,
		Y:              y,
		Perception:     ua.perception.Get(ua.party.Other()),
		NewCredibility: ua.credibility,
	})
}

// ----------------------- News handling -----------------------

// ReceiveNews is the single entry point that mutates belief and membership.
// A repeat delivery only bumps the exposure count.
func (ua *UserAgent) ReceiveNews(news *common.News, from string) error {
	id := news.GetID()
	if ua.HasReceived(id) {
		ua.exposure[id]++
		ua.Server.Logger().Debug("repeat exposure",
			zap.String("agent", ua.name), zap.Int("news", id), zap.Int("count", ua.exposure[id]))
		return nil
	}

	ua.received = append(ua.received, news)
	ua.receivedIDs[id] = struct{}{}
	ua.receivedFrom[id] = from
	ua.exposure[id] = 1

	ua.UpdatePerception(news)
	if next, convert := ua.CheckConversion(); convert {
		ua.ConvertTo(next)
	}

	share, err := ua.ShareDecision(news)
	if err != nil {
		return err
	}
	if share {
		return ua.ShareNews(news)
	}
	return nil
}

// ShareNews forwards a received item to the neighbourhood, never back to
// whoever delivered it. An item is forwarded at most once.
func (ua *UserAgent) ShareNews(news *common.News) error {
	id := news.GetID()
	if !ua.HasReceived(id) {
		return fmt.Errorf("agent %s cannot share news %d it never received", ua.name, id)
	}
	if ua.HasShared(id) {
		return nil
	}
	ua.sharedIDs[id] = struct{}{}
	ua.shared = append(ua.shared, id)
	return ua.Server.SendNews(ua, news, ua.receivedFrom[id])
}

// ----------------------- Data Recording -----------------------

func (ua *UserAgent) RecordAgentStatus() gameRecorder.AgentRecord {
	x, y := ua.GetPosition()
	return gameRecorder.AgentRecord{
		AgentName:    ua.name,
		Archetype:    ua.archetype,
		Party:        ua.party,
		X:            x,
		Y:            y,
		Credibility:  ua.credibility,
		Perception:   ua.perception,
		NewsReceived: len(ua.received),
		NewsShared:   len(ua.shared),
	}
}
