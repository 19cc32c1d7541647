package environmentServer

import (
	"fmt"

	"go.uber.org/zap"

	common "github.com/harryknee/NewsDiffusion/common"
)

// SendNews delivers news from sender to every eligible agent in its
// neighbourhood, in grid order. A receiver is skipped when it cannot
// receive news, is the agent named upstream, or already holds the item.
// The last check happens at delivery time because earlier deliveries in the
// same call may already have cascaded to it.
func (cs *EnvironmentServer) SendNews(sender common.IExtendedAgent, news *common.News, upstream string) error {
	if sender.GetArchetype().CanReceiveNews() {
		cs.stepCounters.CountShare(news)
		cs.totals.CountShare(news)
	}

	for _, receiver := range cs.grid.Neighbours(sender, cs.config.Radius) {
		if !receiver.CanReceiveNews() {
			continue
		}
		if upstream != "" && receiver.GetName() == upstream {
			continue
		}
		if receiver.HasReceived(news.GetID()) {
			continue
		}

		if err := receiver.ReceiveNews(news, sender.GetName()); err != nil {
			return fmt.Errorf("deliver news %d from %s to %s: %w", news.GetID(), sender.GetName(), receiver.GetName(), err)
		}

		cs.propagationLog = append(cs.propagationLog, common.PropagationRecord{
			SenderID:          sender.GetName(),
			SenderArchetype:   sender.GetArchetype(),
			ReceiverID:        receiver.GetName(),
			ReceiverArchetype: receiver.GetArchetype(),
			NewsID:            news.GetID(),
			NewsParty:         news.GetParty(),
			NewsVeracity:      news.GetVeracity(),
		})
		cs.stepCounters.Deliveries++
		cs.totals.Deliveries++
		cs.logger.Debug("news delivered",
			zap.String("sender", sender.GetName()),
			zap.String("receiver", receiver.GetName()),
			zap.Int("news", news.GetID()),
		)
	}
	return nil
}
