package agents

import (
	"fmt"

	common "github.com/harryknee/NewsDiffusion/common"
)

// SourceAgent is a Bot (mints false news) or a NewsReel (mints true news).
// Sources only originate news; they never receive or reshare it.
type SourceAgent struct {
	*ExtendedAgent
	archetype common.Archetype
	factory   *common.NewsFactory

	outbox []*common.News
	sent   int
}

func CreateBot(serv common.IServer, name string, factory *common.NewsFactory) *SourceAgent {
	return &SourceAgent{
		ExtendedAgent: GetBaseAgents(serv, name),
		archetype:     common.Bot,
		factory:       factory,
	}
}

func CreateNewsReel(serv common.IServer, name string, factory *common.NewsFactory) *SourceAgent {
	return &SourceAgent{
		ExtendedAgent: GetBaseAgents(serv, name),
		archetype:     common.NewsReel,
		factory:       factory,
	}
}

func (sa *SourceAgent) GetArchetype() common.Archetype { return sa.archetype }
func (sa *SourceAgent) CanReceiveNews() bool           { return false }
func (sa *SourceAgent) HasReceived(int) bool           { return false }

func (sa *SourceAgent) GetOutbox() []*common.News {
	return append([]*common.News(nil), sa.outbox...)
}

// CreateNews mints one item with the veracity fixed by the archetype and
// adds it to the outbox.
func (sa *SourceAgent) CreateNews() (*common.News, error) {
	news, err := sa.factory.Mint(common.NewsOptions{Veracity: common.Ptr(sa.archetype == common.NewsReel)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sa.name, err)
	}
	sa.outbox = append(sa.outbox, news)
	return news, nil
}

// Broadcast pushes every outbox item not yet sent through the router.
func (sa *SourceAgent) Broadcast() error {
	for ; sa.sent < len(sa.outbox); sa.sent++ {
		if err := sa.Server.SendNews(sa, sa.outbox[sa.sent], ""); err != nil {
			return err
		}
	}
	return nil
}

func (sa *SourceAgent) ReceiveNews(news *common.News, from string) error {
	return fmt.Errorf("%w: %v %s cannot receive news %d", common.ErrMissingCapability, sa.archetype, sa.name, news.GetID())
}

func (sa *SourceAgent) ShareDecision(news *common.News) (bool, error) {
	return false, fmt.Errorf("%w: %v %s has no share decision", common.ErrMissingCapability, sa.archetype, sa.name)
}

// RestoreOutbox replaces the outbox with already broadcast items.
func (sa *SourceAgent) RestoreOutbox(outbox []*common.News) {
	sa.outbox = append([]*common.News(nil), outbox...)
	sa.sent = len(sa.outbox)
}
