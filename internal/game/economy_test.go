package game

import (
	"math"
	"testing"
	"time"
)

func TestUpgradeCostIncreasesUntilMaxLevel(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	for _, u := range cat.Upgrades {
		prev := int64(-1)
		for level := 0; level < u.MaxLevel; level++ {
			cost, ok := UpgradeCost(u, level)
			if !ok {
				t.Fatalf("%s level %d: unexpectedly maxed", u.ID, level)
			}
			if cost <= prev {
				t.Fatalf("%s level %d: cost %d not above previous %d", u.ID, level, cost, prev)
			}
			prev = cost
		}
		if _, ok := UpgradeCost(u, u.MaxLevel); ok {
			t.Fatalf("%s: cost available at max level %d", u.ID, u.MaxLevel)
		}
	}
}

func TestUpgradeCostFormula(t *testing.T) {
	t.Parallel()

	u := Upgrade{ID: "test", BaseCost: 64, CostMult: 1.5, MaxLevel: 10}
	tests := []struct {
		level int
		want  int64
	}{
		{0, 64},
		{1, 96},
		{2, 144},
		{3, 216},
		{5, 486},
	}
	for _, tt := range tests {
		got, ok := UpgradeCost(u, tt.level)
		if !ok || got != tt.want {
			t.Errorf("UpgradeCost(level %d) = %d, %v, want %d, true", tt.level, got, ok, tt.want)
		}
	}
}

func TestTankCapacity(t *testing.T) {
	t.Parallel()

	if got := TankCapacity(0); got != 5 {
		t.Fatalf("TankCapacity(0) = %d, want 5", got)
	}
	if got := TankCapacity(3); got != 11 {
		t.Fatalf("TankCapacity(3) = %d, want 11", got)
	}
}

func TestAquariumIncomeHasFloorOfOnePerFish(t *testing.T) {
	t.Parallel()

	aquarium := []CaughtFish{
		newCatch("a", "carp", 100),  // 5
		newCatch("b", "minnow", 10), // floor(0.5) -> 1
		newCatch("c", "minnow", 1),  // 1
	}
	if got := AquariumIncome(aquarium); got != 7 {
		t.Fatalf("AquariumIncome = %d, want 7", got)
	}
	if got := AquariumIncome(nil); got != 0 {
		t.Fatalf("AquariumIncome(nil) = %d, want 0", got)
	}
}

func TestOfflineEarningsGracePeriod(t *testing.T) {
	t.Parallel()

	aquarium := []CaughtFish{newCatch("a", "carp", 100)}
	for _, elapsed := range []time.Duration{0, 30 * time.Second, 60 * time.Second} {
		if got := OfflineEarnings(testNow.Add(-elapsed), testNow, aquarium, 0); got != 0 {
			t.Fatalf("OfflineEarnings(%v) = %d, want 0", elapsed, got)
		}
	}
	// 61s is six whole income ticks.
	if got := OfflineEarnings(testNow.Add(-61*time.Second), testNow, aquarium, 0); got != 30 {
		t.Fatalf("OfflineEarnings(61s) = %d, want 30", got)
	}
}

func TestOfflineEarningsClampToHorizon(t *testing.T) {
	t.Parallel()

	aquarium := []CaughtFish{newCatch("a", "carp", 100)}
	twoHours := OfflineEarnings(testNow.Add(-2*time.Hour), testNow, aquarium, 0)
	if want := int64(720 * 5); twoHours != want {
		t.Fatalf("OfflineEarnings(2h) = %d, want %d", twoHours, want)
	}

	if got := OfflineEarnings(testNow.Add(-3*time.Hour), testNow, aquarium, 0); got != twoHours {
		t.Fatalf("OfflineEarnings(3h, level 0) = %d, want the 2h amount %d", got, twoHours)
	}
	if got := OfflineEarnings(testNow.Add(-100000*time.Hour), testNow, aquarium, 0); got != twoHours {
		t.Fatalf("OfflineEarnings(far past) = %d, want the 2h amount %d", got, twoHours)
	}

	// One offline level extends the horizon by an hour.
	if got, want := OfflineEarnings(testNow.Add(-3*time.Hour), testNow, aquarium, 1), int64(1080*5); got != want {
		t.Fatalf("OfflineEarnings(3h, level 1) = %d, want %d", got, want)
	}
}

func TestOfflineEarningsClockSkew(t *testing.T) {
	t.Parallel()

	aquarium := []CaughtFish{newCatch("a", "carp", 100)}
	if got := OfflineEarnings(testNow.Add(time.Hour), testNow, aquarium, 0); got != 0 {
		t.Fatalf("OfflineEarnings(save in the future) = %d, want 0", got)
	}
}

func TestOfflineHorizonIsBounded(t *testing.T) {
	t.Parallel()

	for _, level := range []int{-3, 0, 10, 3_000_000, math.MaxInt} {
		h := OfflineHorizon(level)
		if h < OfflineBaseHours*time.Hour || h > maxOfflineHours*time.Hour {
			t.Errorf("OfflineHorizon(%d) = %v", level, h)
		}
	}

	aquarium := []CaughtFish{newCatch("a", "carp", 100)}
	if got := OfflineEarnings(testNow.Add(-3*time.Hour), testNow, aquarium, math.MaxInt); got != 1080*5 {
		t.Fatalf("OfflineEarnings(3h, huge level) = %d, want %d", got, 1080*5)
	}
}
