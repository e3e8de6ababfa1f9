package stampcard

import (
	"context"
	"time"

	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/scan"
)

// DefaultPollInterval is how often WatchRedemption re-reads the card while a
// customer's redemption code is displayed.
const DefaultPollInterval = 1500 * time.Millisecond

// RedemptionPayload encodes the reward_redemption QR payload for a card. The
// embedded counts snapshot the state the customer confirmed on screen.
func (e *Engine) RedemptionPayload(c *card.Card) (string, error) {
	if !c.CanRedeem() {
		return "", ErrNoRewards
	}

	return scan.EncodeRedemption(scan.RedemptionPayload{
		CustomerID:       c.CustomerID,
		CustomerName:     c.CustomerName,
		CustomerEmail:    c.CustomerEmail,
		CardID:           c.ID,
		CurrentStamps:    c.CurrentStamps,
		AvailableRewards: c.AvailableRewards,
		Timestamp:        e.now(),
	})
}

// CardPayload encodes the loyalty_card QR payload shown as a customer's
// identification code.
func (e *Engine) CardPayload(c *card.Card) (string, error) {
	return scan.EncodeCard(scan.CardPayload{
		CustomerID:    c.CustomerID,
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		CardID:        c.ID,
		IssueDate:     c.IssueDate,
	})
}

// WatchRedemption polls a card until its available-reward count drops below
// the baseline observed at the first read, which confirms that a cafe
// operator has processed the redemption. fn is invoked once with the updated
// card and the watcher returns. The watcher stops, without firing, when ctx
// is done.
//
// This is a client-side substitute for a push notification channel: the store
// contract offers no subscriptions, so confirmation is observed by re-reading.
func (e *Engine) WatchRedemption(ctx context.Context, cardID string, fn func(*card.Card)) error {
	baseline, err := e.store.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c, err := e.store.GetCard(ctx, cardID)
			if err != nil {
				// Transient read failures are skipped; the next tick
				// re-reads.
				e.logger.Debug("redemption poll failed",
					"card_id", cardID,
					"error", err,
				)
				continue
			}

			if c.AvailableRewards < baseline.AvailableRewards {
				fn(c)
				return nil
			}
		}
	}
}
