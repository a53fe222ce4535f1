/*
Package game
File: state.go
Description:
    Construction of the per-player WorldState and the tutorial cursor.

    There is no package-level mutable state: every operation receives the
    WorldState it works on. A host owns one WorldState per session and
    serializes all calls against it.
*/

package game

import "time"

// CurrentVersion is stamped on every record the migrator returns.
const CurrentVersion = 2

// Tutorial cursor values. The cursor only ever moves forward through this
// sequence and ends at TutorialDone.
const (
	TutorialDone  = 0
	TutorialIntro = 1 // New player, nothing done yet
	TutorialCast  = 2 // Cast once, waiting for the line to settle
	TutorialWait  = 3 // Line in the water
	TutorialReel  = 4 // Fish on the hook
	TutorialSell  = 5 // First catch landed; sell or keep it
)

const initialGameTime = 0.2

// NewWorldState returns the state of a brand new player.
func NewWorldState(cat *Catalog, now time.Time) WorldState {
	return WorldState{
		Inventory:         []CaughtFish{},
		Aquarium:          []CaughtFish{},
		Upgrades:          map[string]int{},
		FishRecords:       map[string]FishRecord{},
		GameTime:          initialGameTime,
		Weather:           WeatherSunny,
		ActiveLocation:    cat.DefaultLocation,
		UnlockedLocations: []string{cat.DefaultLocation},
		BaitInventory:     map[string]int{},
		UnlockedBobbers:   []string{cat.DefaultBobber},
		ActiveBobberID:    cat.DefaultBobber,
		UnlockedSkins:     []string{cat.DefaultSkin},
		ActiveSkinID:      cat.DefaultSkin,
		TutorialStep:      TutorialIntro,
		LastSaveTime:      toMillis(now),
		Version:           CurrentVersion,
	}
}

// ResetWorldState is a soft reset: everything goes back to a new game but
// the player keeps their name, and the tutorial starts again.
func ResetWorldState(cat *Catalog, w *WorldState, now time.Time) {
	name := w.PlayerName
	*w = NewWorldState(cat, now)
	w.PlayerName = name
}

// advanceTutorial moves the cursor from one step to the next and reports
// whether it moved. Calls made at any other step do nothing.
func advanceTutorial(w *WorldState, from, to int, emit Emitter) bool {
	if w.TutorialStep != from {
		return false
	}
	w.TutorialStep = to
	emit.Emit(Event{Kind: EventTutorial, Tutorial: to})
	return true
}
