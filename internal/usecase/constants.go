package usecase

// Fixed identifiers and texts carried by the accounting import. The
// contact and category ids denote the staking-reward category in the
// downstream system.
const (
	descVestingDistribution = "vesting distribution per Anchorage report"
	descStakingReward       = "staking reward from vesting distribution per Anchorage report"

	rewardContactID  = "nFc4OUI5w6wSa6zFKQVj.526"
	rewardCategoryID = "nFc4OUI5w6wSa6zFKQVj.265"
)

// Stage names used in logs and metrics.
const (
	StageOutflows    = "stage1_outflows"
	StageTransfers   = "stage2_transfers"
	StageRewards     = "stage3_rewards"
	StageSuppression = "stage4_suppression"
)

// rewardWindowDays bounds how far after the outflow date a
// reward-source transaction may land and still count as the matching
// staking payout.
const rewardWindowDays = 10
