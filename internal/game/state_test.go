package game

import "testing"

func TestNewWorldState(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	w := NewWorldState(cat, testNow)

	if w.ActiveLocation != cat.DefaultLocation || !w.HasLocation(cat.DefaultLocation) {
		t.Fatalf("location = %q %v", w.ActiveLocation, w.UnlockedLocations)
	}
	if w.TutorialStep != TutorialIntro {
		t.Fatalf("tutorial = %d, want intro", w.TutorialStep)
	}
	if w.Inventory == nil || w.Aquarium == nil || w.Upgrades == nil || w.FishRecords == nil || w.BaitInventory == nil {
		t.Fatal("nil collections in a new world")
	}
	if w.LastSaveTime != testNow.UnixMilli() || w.Version != CurrentVersion {
		t.Fatalf("lastSave=%d version=%d", w.LastSaveTime, w.Version)
	}
	if w.Money != 0 || w.Gems != 0 || w.ActiveBaitID != "" {
		t.Fatal("new world is not empty")
	}
}

func TestResetKeepsName(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	w := NewWorldState(cat, testNow)
	w.PlayerName = "Kai"
	w.Money = 999
	w.TutorialStep = TutorialDone
	w.Inventory = append(w.Inventory, newCatch("a", "carp", 30))

	ResetWorldState(cat, &w, testNow)

	if w.PlayerName != "Kai" {
		t.Fatalf("name = %q", w.PlayerName)
	}
	if w.Money != 0 || len(w.Inventory) != 0 || w.TutorialStep != TutorialIntro {
		t.Fatalf("reset left money=%d inventory=%d tutorial=%d", w.Money, len(w.Inventory), w.TutorialStep)
	}
}

func TestTutorialOnlyMovesFromExpectedStep(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	w := WorldState{TutorialStep: TutorialWait}

	if advanceTutorial(&w, TutorialCast, TutorialWait, rec) {
		t.Fatal("advanced from the wrong step")
	}
	if !advanceTutorial(&w, TutorialWait, TutorialReel, rec) || w.TutorialStep != TutorialReel {
		t.Fatal("did not advance")
	}
	if rec.count(EventTutorial) != 1 || rec.events[0].Tutorial != TutorialReel {
		t.Fatalf("events = %+v", rec.events)
	}
}
