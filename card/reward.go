package card

// StampsPerReward is the number of stamps that earn one reward.
const StampsPerReward = 10

// CalculateRewards converts a cumulative stamp count into in-progress stamps
// and redeemable rewards. It is used only to seed a card from an initial
// stamp count at creation time; incremental mutation uses delta arithmetic
// (see AddStamps), which is the authoritative accounting once redemptions
// start spending from the available-reward balance.
func CalculateRewards(totalStamps int) (currentStamps, availableRewards int) {
	if totalStamps < 0 {
		totalStamps = 0
	}
	return totalStamps % StampsPerReward, totalStamps / StampsPerReward
}

// AddStamps applies n stamps to the card using delta arithmetic and returns
// the number of rewards earned by this addition. TotalStamps grows by n,
// CurrentStamps wraps modulo StampsPerReward, and each wrap adds one
// available reward. AvailableRewards already spent by redemptions are not
// reconstructed from TotalStamps.
func (c *Card) AddStamps(n int) (earned int) {
	if n <= 0 {
		return 0
	}

	carry := c.CurrentStamps + n
	earned = carry / StampsPerReward

	c.CurrentStamps = carry % StampsPerReward
	c.AvailableRewards += earned
	c.TotalStamps += n

	return earned
}

// Redeem consumes one available reward. It reports false, without touching
// the card, when no reward is available. CurrentStamps and TotalStamps are
// never affected by redemption.
func (c *Card) Redeem() bool {
	if c.AvailableRewards <= 0 {
		return false
	}

	c.AvailableRewards--
	c.TotalRedeemed++

	return true
}
