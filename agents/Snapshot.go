package agents

import (
	"fmt"

	common "github.com/harryknee/NewsDiffusion/common"
)

// UserAgentState is the serialisable state of a user agent, enough to
// resume a run.
type UserAgentState struct {
	Name         string            `json:"name"`
	Archetype    common.Archetype  `json:"archetype"`
	Party        common.Party      `json:"party"`
	Credibility  float64           `json:"credibility"`
	Perception   common.Perception `json:"perception"`
	Received     []int             `json:"received"`
	ReceivedFrom map[int]string    `json:"received_from,omitempty"`
	Shared       []int             `json:"shared"`
	Exposure     map[int]int       `json:"exposure,omitempty"`
}

func (ua *UserAgent) State() UserAgentState {
	state := UserAgentState{
		Name:         ua.name,
		Archetype:    ua.archetype,
		Party:        ua.party,
		Credibility:  ua.credibility,
		Perception:   ua.perception,
		Shared:       ua.GetSharedIDs(),
		ReceivedFrom: make(map[int]string, len(ua.receivedFrom)),
		Exposure:     make(map[int]int, len(ua.exposure)),
	}
	for _, n := range ua.received {
		state.Received = append(state.Received, n.GetID())
	}
	for id, from := range ua.receivedFrom {
		state.ReceivedFrom[id] = from
	}
	for id, c := range ua.exposure {
		state.Exposure[id] = c
	}
	return state
}

// CheckState reports whether state can be restored into this agent without
// touching it. News ids are resolved against catalogue.
func (ua *UserAgent) CheckState(state UserAgentState, catalogue map[int]*common.News) error {
	_, err := ua.resolveState(state, catalogue)
	return err
}

func (ua *UserAgent) resolveState(state UserAgentState, catalogue map[int]*common.News) ([]*common.News, error) {
	if state.Name != ua.name {
		return nil, fmt.Errorf("%w: state for %s applied to %s", common.ErrSnapshotMismatch, state.Name, ua.name)
	}
	if state.Party != ua.party {
		return nil, fmt.Errorf("%w: %s party %s, snapshot says %s", common.ErrSnapshotMismatch, ua.name, ua.party, state.Party)
	}
	if !state.Archetype.CanReceiveNews() {
		return nil, fmt.Errorf("%w: %s has non-user archetype %v", common.ErrSnapshotMismatch, ua.name, state.Archetype)
	}

	received := make([]*common.News, 0, len(state.Received))
	receivedIDs := make(map[int]struct{}, len(state.Received))
	for _, id := range state.Received {
		n, ok := catalogue[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s received unknown news %d", common.ErrSnapshotMismatch, ua.name, id)
		}
		if _, dup := receivedIDs[id]; dup {
			return nil, fmt.Errorf("%w: %s received news %d twice", common.ErrSnapshotMismatch, ua.name, id)
		}
		received = append(received, n)
		receivedIDs[id] = struct{}{}
	}
	sharedIDs := make(map[int]struct{}, len(state.Shared))
	for _, id := range state.Shared {
		if _, ok := receivedIDs[id]; !ok {
			return nil, fmt.Errorf("%w: %s shared news %d it never received", common.ErrSnapshotMismatch, ua.name, id)
		}
		if _, dup := sharedIDs[id]; dup {
			return nil, fmt.Errorf("%w: %s shared news %d twice", common.ErrSnapshotMismatch, ua.name, id)
		}
		sharedIDs[id] = struct{}{}
	}
	return received, nil
}

// RestoreState replaces the agent's mutable state. Nothing changes when the
// state is rejected, and restored agents share the catalogue's news instances.
func (ua *UserAgent) RestoreState(state UserAgentState, catalogue map[int]*common.News) error {
	received, err := ua.resolveState(state, catalogue)
	if err != nil {
		return err
	}

	ua.resetHistory()
	ua.archetype = state.Archetype
	ua.credibility = state.Credibility
	ua.perception = common.Perception{}
	ua.perception.Set(common.PartyA, state.Perception.A)
	ua.perception.Set(common.PartyB, state.Perception.B)

	for _, n := range received {
		id := n.GetID()
		ua.received = append(ua.received, n)
		ua.receivedIDs[id] = struct{}{}
		ua.receivedFrom[id] = state.ReceivedFrom[id]
		ua.exposure[id] = 1
	}
	for id, c := range state.Exposure {
		if ua.HasReceived(id) {
			ua.exposure[id] = c
		}
	}
	for _, id := range state.Shared {
		ua.sharedIDs[id] = struct{}{}
		ua.shared = append(ua.shared, id)
	}
	return nil
}
