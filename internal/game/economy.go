/*
Package game
File: economy.go
Description:
    Pure calculators for the progression economy.
    This includes:
    1. Upgrade cost curves.
    2. Aquarium capacity.
    3. Passive income from the aquarium, per income tick.
    4. Offline earnings owed for time spent away.
*/

package game

import (
	"math"
	"time"
)

const (
	// IncomeTick is the period over which aquarium income is credited.
	IncomeTick = 10 * time.Second

	// OfflineGrace is the minimum absence that earns anything. Reloading
	// quickly must not farm income.
	OfflineGrace = time.Minute

	// OfflineBaseHours is the offline horizon before any upgrade.
	OfflineBaseHours = 2

	// maxOfflineHours bounds the horizon whatever level a record claims.
	maxOfflineHours = 24 * 365

	baseTankCapacity   = 5
	tankCapacityPerLvl = 2

	incomeShare = 0.05
)

// UpgradeCost returns the price of buying the next level when the player
// currently owns currentLevel. ok is false once the upgrade is maxed out.
// Formula: floor(BaseCost * CostMult^currentLevel)
func UpgradeCost(u Upgrade, currentLevel int) (cost int64, ok bool) {
	if currentLevel >= u.MaxLevel {
		return 0, false
	}
	if currentLevel < 0 {
		currentLevel = 0
	}
	return int64(math.Floor(float64(u.BaseCost) * math.Pow(u.CostMult, float64(currentLevel)))), true
}

// TankCapacity is the aquarium limit for a tank_size level.
func TankCapacity(level int) int {
	return baseTankCapacity + level*tankCapacityPerLvl
}

// AquariumIncome is the income credited per IncomeTick.
// Each stored fish yields 5% of its price, but at least 1.
func AquariumIncome(aquarium []CaughtFish) int64 {
	var total int64
	for _, f := range aquarium {
		total += max(1, int64(math.Floor(float64(f.Price)*incomeShare)))
	}
	return total
}

// OfflineHorizon is the longest absence that still earns income.
func OfflineHorizon(offlineLevel int) time.Duration {
	hours := OfflineBaseHours + min(max(0, offlineLevel), maxOfflineHours-OfflineBaseHours)
	return time.Duration(hours) * time.Hour
}

// OfflineEarnings computes the income owed for the time between lastSave
// and now. Absences of a minute or less earn nothing; longer absences are
// clamped to the horizon and converted to whole income ticks.
func OfflineEarnings(lastSave, now time.Time, aquarium []CaughtFish, offlineLevel int) int64 {
	elapsed := now.Sub(lastSave)
	if elapsed <= OfflineGrace {
		return 0
	}

	// 1. Clamp to the horizon
	elapsed = min(elapsed, OfflineHorizon(offlineLevel))

	// 2. Whole income ticks only
	ticks := int64(elapsed / IncomeTick)

	return ticks * AquariumIncome(aquarium)
}
