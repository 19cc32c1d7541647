package environmentServer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agents "github.com/harryknee/NewsDiffusion/agents"
	common "github.com/harryknee/NewsDiffusion/common"
)

func receivers(log []common.PropagationRecord) []string {
	var names []string
	for _, rec := range log {
		names = append(names, rec.ReceiverID)
	}
	return names
}

func TestSendNewsSkipsIneligibleReceivers(t *testing.T) {
	serv := newEmptyServer(t, 3, 3)
	serv.SetRand(newFixedRand(0.999))

	sender := addUser(t, serv, "S4", common.PartyA, common.Susceptible, 0.9, 4)
	addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 0)
	holder := addUser(t, serv, "S1", common.PartyA, common.Susceptible, 0.9, 1)
	_, err := serv.AddSource(common.Bot, "BOT0", 2)
	require.NoError(t, err)
	addUser(t, serv, "K5", common.PartyB, common.Skeptic, 0.2, 5)
	addUser(t, serv, "S8", common.PartyB, common.Susceptible, 0.7, 8)

	news := mint(t, serv, common.PartyA, common.For, true, 0.8)
	require.NoError(t, holder.ReceiveNews(news, ""))
	require.NoError(t, sender.ReceiveNews(news, "S0"))
	require.NoError(t, serv.SendNews(sender, news, "S0"))

	log := serv.GetPropagationLog()
	assert.Equal(t, []string{"K5", "S8"}, receivers(log))
	for _, rec := range log {
		assert.Equal(t, "S4", rec.SenderID)
		assert.Equal(t, common.Susceptible, rec.SenderArchetype)
		assert.Equal(t, news.GetID(), rec.NewsID)
		assert.Equal(t, common.PartyA, rec.NewsParty)
		assert.True(t, rec.NewsVeracity)
		assert.True(t, rec.ReceiverArchetype.CanReceiveNews())
	}
	assert.Equal(t, 2, serv.GetStepCounters().Deliveries)
	assert.Equal(t, 1, serv.GetStepCounters().TrueNewsShared)

	// without an upstream the original deliverer is eligible again
	require.NoError(t, serv.SendNews(sender, news, ""))
	assert.Equal(t, []string{"K5", "S8", "S0"}, receivers(serv.GetPropagationLog()))
}

func TestSourcesBroadcastWithoutCountingShares(t *testing.T) {
	serv := newEmptyServer(t, 3, 1)
	serv.SetRand(newFixedRand(0.999))
	addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 0)
	bot, err := serv.AddSource(common.Bot, "BOT0", 1)
	require.NoError(t, err)
	addUser(t, serv, "S2", common.PartyB, common.Susceptible, 0.9, 2)

	news, err := bot.CreateNews()
	require.NoError(t, err)
	require.NoError(t, bot.Broadcast())

	assert.Equal(t, []string{"S0", "S2"}, receivers(serv.GetPropagationLog()))
	assert.Equal(t, common.Counters{Deliveries: 2}, serv.GetStepCounters())
	for _, ua := range serv.UserAgents() {
		assert.True(t, ua.HasReceived(news.GetID()))
		assert.Equal(t, "BOT0", ua.GetReceivedFrom(news.GetID()))
	}
}

func TestCascadeNeverReturnsToSender(t *testing.T) {
	serv := newEmptyServer(t, 4, 1)
	serv.SetRand(newFixedRand(0))
	users := []string{"S0", "S1", "S2", "S3"}
	for i, name := range users {
		addUser(t, serv, name, common.PartyA, common.Susceptible, 0.9, i)
	}
	first := serv.UserAgents()[0]
	news := mint(t, serv, common.PartyA, common.For, true, 0.8)

	require.NoError(t, first.ReceiveNews(news, ""))

	// records are appended once a delivery returns, so deeper hops come first
	log := serv.GetPropagationLog()
	assert.Equal(t, []string{"S3", "S2", "S1"}, receivers(log))
	seen := map[string]bool{}
	for _, rec := range log {
		assert.False(t, seen[rec.ReceiverID], "delivered twice to %s", rec.ReceiverID)
		seen[rec.ReceiverID] = true
		assert.NotEqual(t, rec.SenderID, rec.ReceiverID)
	}
	for _, ua := range serv.UserAgents() {
		assert.Equal(t, 1, ua.GetExposureCount(news.GetID()))
		assert.True(t, ua.HasShared(news.GetID()))
	}
	assert.Equal(t, 4, serv.GetTotals().TrueNewsShared)
}

var errBrokenReceiver = errors.New("receiver broken")

// brokenReceiver accepts deliveries but fails to process them.
type brokenReceiver struct {
	*agents.ExtendedAgent
}

func (b *brokenReceiver) GetArchetype() common.Archetype { return common.Susceptible }
func (b *brokenReceiver) CanReceiveNews() bool           { return true }
func (b *brokenReceiver) HasReceived(int) bool           { return false }

func (b *brokenReceiver) ReceiveNews(*common.News, string) error { return errBrokenReceiver }

func (b *brokenReceiver) ShareDecision(*common.News) (bool, error) { return false, nil }

func TestSendNewsReturnsReceiverErrors(t *testing.T) {
	serv := newEmptyServer(t, 3, 1)
	serv.SetRand(newFixedRand(0.999))
	sender := addUser(t, serv, "S0", common.PartyA, common.Susceptible, 0.9, 0)
	require.NoError(t, serv.register(&brokenReceiver{ExtendedAgent: agents.GetBaseAgents(serv, "X1")}, 1))

	news := mint(t, serv, common.PartyA, common.For, true, 0.8)
	require.NoError(t, sender.ReceiveNews(news, ""))

	err := serv.SendNews(sender, news, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBrokenReceiver))
	assert.Contains(t, err.Error(), "X1")
	assert.Empty(t, serv.GetPropagationLog())
	assert.Equal(t, 0, serv.GetStepCounters().Deliveries)
}
