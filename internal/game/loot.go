/*
Package game
File: loot.go
Description:
    The loot resolver turns the context of a catch (location, time of day,
    weather, luck upgrades, equipped bait) into one concrete CaughtFish
    with a size and a price.

    It is a pure function of its inputs and the random source; it never
    touches a WorldState.
*/

package game

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	itemChance     = 0.15 // Share of rolls that are non-fish finds
	treasureCutoff = 0.8  // Item draws above this are treasure (about 20%)

	luckPerLevel      = 0.02
	rainLuck          = 0.05
	stormLuck         = 0.10
	safetyLuckPerLvl  = 0.02
	priceSizeExponent = 1.2
)

// rarityThresholds are checked highest tier first against roll + luck.
var rarityThresholds = []struct {
	above  float64
	rarity Rarity
}{
	{0.98, RarityMythic},
	{0.94, RarityLegendary},
	{0.85, RarityEpic},
	{0.70, RarityRare},
}

// LootInput is everything the resolver looks at.
type LootInput struct {
	LuckLevel   int
	GameTime    float64
	Location    string
	BaitID      string
	Weather     Weather
	SafetyLevel int
	Now         time.Time
}

// Period reports Day or Night for a fraction of the in-game day.
func Period(gameTime float64) ActiveTime {
	if gameTime >= 0.5 {
		return ActiveNight
	}
	return ActiveDay
}

// LuckBonus sums the upgrade, weather and bait contributions.
func LuckBonus(luckLevel int, weather Weather, safetyLevel int, bait *Bait) float64 {
	luck := float64(luckLevel) * luckPerLevel

	switch weather {
	case WeatherRain:
		luck += rainLuck
	case WeatherStorm:
		luck += stormLuck
		if safetyLevel > 0 {
			luck += float64(safetyLevel) * safetyLuckPerLvl
		}
	}

	if bait != nil {
		luck += bait.LuckBonus
	}
	return luck
}

// RollRarity performs the two-stage rarity roll once.
// Stage one splits off non-fish finds regardless of luck; stage two buckets
// a luck-shifted uniform draw.
func RollRarity(rng RandomSource, luck float64) Rarity {
	if rng.Float64() < itemChance {
		if rng.Float64() > treasureCutoff {
			return RarityTreasure
		}
		return RarityJunk
	}

	roll := rng.Float64() + luck
	for _, t := range rarityThresholds {
		if roll > t.above {
			return t.rarity
		}
	}
	return RarityCommon
}

// RollRarityWithBait applies the bait's single reroll: a Common or Junk
// result is rolled again, once, when a second draw lands under the
// bait's reroll chance.
func RollRarityWithBait(rng RandomSource, luck float64, bait *Bait) Rarity {
	rarity := RollRarity(rng, luck)
	if bait == nil || bait.RerollChance <= 0 {
		return rarity
	}
	if rarity != RarityCommon && rarity != RarityJunk {
		return rarity
	}
	if rng.Float64() < bait.RerollChance {
		return RollRarity(rng, luck)
	}
	return rarity
}

// Candidates returns the species eligible for a rarity at a location,
// relaxing filters until something matches:
//  1. location + rarity + weather, + time of day for fish tiers
//  2. location + rarity
//  3. location + Common
//  4. the default species
func (c *Catalog) Candidates(location string, rarity Rarity, weather Weather, period ActiveTime) []*Species {
	strict := c.filterSpecies(func(s *Species) bool {
		if !s.FoundAt(location) || s.Rarity != rarity || !s.LikesWeather(weather) {
			return false
		}
		return rarity.IsItem() || s.ActiveAt(period)
	})
	if len(strict) > 0 {
		return strict
	}

	if relaxed := c.filterSpecies(func(s *Species) bool {
		return s.FoundAt(location) && s.Rarity == rarity
	}); len(relaxed) > 0 {
		return relaxed
	}

	if common := c.filterSpecies(func(s *Species) bool {
		return s.FoundAt(location) && s.Rarity == RarityCommon
	}); len(common) > 0 {
		return common
	}

	if def := c.defaultSpecies(); def != nil {
		return []*Species{def}
	}
	return nil
}

func (c *Catalog) filterSpecies(keep func(*Species) bool) []*Species {
	var out []*Species
	for i := range c.Species {
		if keep(&c.Species[i]) {
			out = append(out, &c.Species[i])
		}
	}
	return out
}

// Resolve produces one caught item for the given context.
func (c *Catalog) Resolve(rng RandomSource, in LootInput) CaughtFish {
	bait := c.GetBait(in.BaitID)
	luck := LuckBonus(in.LuckLevel, in.Weather, in.SafetyLevel, bait)

	// 1. Rarity
	rarity := RollRarityWithBait(rng, luck, bait)

	// 2. Species
	location := c.ResolveLocation(in.Location)
	candidates := c.Candidates(location, rarity, in.Weather, Period(in.GameTime))
	species := candidates[pick(rng, len(candidates))]

	// 3. Size & price
	size, price := RollSizeAndPrice(rng, *species)

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return CaughtFish{
		UID:      uuid.NewString(),
		TypeID:   species.ID,
		Price:    price,
		CaughtAt: toMillis(now),
		Size:     size,
	}
}

// RollSizeAndPrice draws a size for sized species and prices the catch.
// Size is the mean of three uniform draws across the range, which biases
// it toward the middle. Price scales with (size/maxSize)^1.2 and a ±10%
// variance; it is floored and never below 1.
func RollSizeAndPrice(rng RandomSource, s Species) (*float64, int64) {
	if !s.Sized() {
		variance := 0.9 + rng.Float64()*0.2
		return nil, floorPrice(float64(s.BasePrice) * variance)
	}

	spread := (rng.Float64() + rng.Float64() + rng.Float64()) / 3
	size := math.Round((s.MinSize+(s.MaxSize-s.MinSize)*spread)*10) / 10

	variance := 0.9 + rng.Float64()*0.2
	return &size, SizedPrice(s, size, variance)
}

// SizedPrice prices a sized catch; it is non-decreasing in size.
func SizedPrice(s Species, size, variance float64) int64 {
	mult := math.Pow(size/s.MaxSize, priceSizeExponent)
	return floorPrice(float64(s.BasePrice) * mult * variance)
}

func floorPrice(v float64) int64 {
	return max(1, int64(math.Floor(v)))
}
