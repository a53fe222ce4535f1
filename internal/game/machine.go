/*
Package game
File: machine.go
Description:
    The fishing action state machine:

        Idle -> Casting -> Waiting -> Biting -> Reeling -> Idle

    Tick advances one fixed period. Act applies one player action. Both
    mutate the WorldState they are given and never fail: a trigger that
    does not apply to the current phase is a no-op.

    The phase, progress bar and combo are session state and are not
    persisted; a reloaded player always starts Idle.
*/

package game

import "time"

// TickInterval is the fixed period of the simulation scheduler.
const TickInterval = 50 * time.Millisecond

const (
	castRate         = 0.05
	autoCastPerLevel = 0.005
	baseBiteChance   = 0.02
	bobberBiteScale  = 0.05
	reelBase         = 0.02
	reelPerRodLevel  = 0.005
	reelPerAutoLevel = 0.002
	manualReelAssist = 0.1
	comboStep        = 0.1
	maxCombo         = 10
	comboWindow      = 8 * time.Second
	maxTreasureGems  = 3
	xpPerCatch       = 1
)

// Phase is the current step of a fishing attempt.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseCasting Phase = "casting"
	PhaseWaiting Phase = "waiting"
	PhaseBiting  Phase = "biting"
	PhaseReeling Phase = "reeling"
)

// Outcome describes what a player action did.
type Outcome string

const (
	OutcomeNone     Outcome = "none"
	OutcomeCast     Outcome = "cast"
	OutcomeTooEarly Outcome = "too_early"
	OutcomeHooked   Outcome = "hooked"
	OutcomeAssist   Outcome = "assist"
)

// Machine drives fishing attempts for one player.
type Machine struct {
	catalog *Catalog
	rng     RandomSource
	emit    Emitter
	now     func() time.Time

	phase     Phase
	progress  float64
	combo     int
	lastCatch time.Time
}

// NewMachine returns an idle machine. A nil emitter discards events.
func NewMachine(cat *Catalog, rng RandomSource, emit Emitter) *Machine {
	if emit == nil {
		emit = Discard
	}
	return &Machine{
		catalog: cat,
		rng:     rng,
		emit:    emit,
		now:     time.Now,
		phase:   PhaseIdle,
	}
}

// SetClock replaces the wall clock used for combo windows and catch stamps.
func (m *Machine) SetClock(now func() time.Time) {
	m.now = now
}

// SetCatalog swaps the catalog used for subsequent catches.
func (m *Machine) SetCatalog(cat *Catalog) {
	m.catalog = cat
}

// Reset drops the current attempt and the combo.
func (m *Machine) Reset() {
	m.phase = PhaseIdle
	m.progress = 0
	m.combo = 0
	m.lastCatch = time.Time{}
}

func (m *Machine) Phase() Phase { return m.phase }
func (m *Machine) Progress() float64 { return m.progress }
func (m *Machine) Combo() int { return m.combo }

// SpeedMultiplier is 1 + combo bonus + the bobber's lure bonus.
func (m *Machine) SpeedMultiplier(w *WorldState) float64 {
	bobber := m.catalog.GetBobber(w.ActiveBobberID)
	return 1 + float64(min(m.combo, maxCombo))*comboStep + bobber.LureSpeedBonus
}

// BiteChance is the per-tick probability of a bite while waiting.
func (m *Machine) BiteChance(w *WorldState) float64 {
	bobber := m.catalog.GetBobber(w.ActiveBobberID)
	return baseBiteChance + bobber.BiteTimeBonus*bobberBiteScale
}

func (m *Machine) setPhase(to Phase) {
	from := m.phase
	m.phase = to
	m.progress = 0
	m.emit.Emit(Event{Kind: EventTransition, From: from, To: to})
}

// Act applies one explicit player action to the current phase.
func (m *Machine) Act(w *WorldState) Outcome {
	switch m.phase {
	case PhaseIdle:
		m.setPhase(PhaseCasting)
		advanceTutorial(w, TutorialIntro, TutorialCast, m.emit)
		return OutcomeCast

	case PhaseWaiting:
		// Too early: nothing changes.
		m.emit.Emit(Event{Kind: EventTooEarly})
		return OutcomeTooEarly

	case PhaseBiting:
		m.setPhase(PhaseReeling)
		return OutcomeHooked

	case PhaseReeling:
		m.progress = min(m.progress+manualReelAssist, 1)
		return OutcomeAssist
	}
	return OutcomeNone
}

// Tick advances one scheduler period. It returns the catch when the
// attempt completed during this tick.
func (m *Machine) Tick(w *WorldState) *CaughtFish {
	speed := m.SpeedMultiplier(w)

	switch m.phase {
	case PhaseIdle:
		if w.Level(UpgradeAutoCast) > 0 {
			m.setPhase(PhaseCasting)
		}

	case PhaseCasting:
		next := m.progress + castRate*speed
		if lvl := w.Level(UpgradeAutoCast); lvl > 0 {
			next += float64(lvl) * autoCastPerLevel
		}
		if next >= 1 {
			m.setPhase(PhaseWaiting)
			advanceTutorial(w, TutorialCast, TutorialWait, m.emit)
			return nil
		}
		m.progress = next

	case PhaseWaiting:
		if m.rng.Float64() < m.BiteChance(w) {
			m.setPhase(PhaseBiting)
			advanceTutorial(w, TutorialWait, TutorialReel, m.emit)
		}

	case PhaseBiting:
		if w.Level(UpgradeAutoReel) > 0 {
			m.setPhase(PhaseReeling)
		}

	case PhaseReeling:
		rate := reelBase +
			float64(w.Level(UpgradeRodSpeed))*reelPerRodLevel +
			float64(w.Level(UpgradeAutoReel))*reelPerAutoLevel
		next := m.progress + rate*speed
		if next >= 1 {
			fish := m.finishCatch(w)
			return &fish
		}
		m.progress = next
	}
	return nil
}

// finishCatch resolves the loot and applies every side effect of a
// completed attempt, then returns the machine to Idle.
func (m *Machine) finishCatch(w *WorldState) CaughtFish {
	now := m.now()

	// 1. Combo
	if !m.lastCatch.IsZero() && now.Sub(m.lastCatch) < comboWindow {
		m.combo = min(m.combo+1, maxCombo)
	} else {
		m.combo = 1
	}
	m.lastCatch = now

	// 2. Loot
	fish := m.catalog.Resolve(m.rng, LootInput{
		LuckLevel:   w.Level(UpgradeLuck),
		GameTime:    w.GameTime,
		Location:    w.ActiveLocation,
		BaitID:      w.ActiveBaitID,
		Weather:     w.Weather,
		SafetyLevel: w.Level(UpgradeSafety),
		Now:         now,
	})
	rarity := RarityCommon
	if s := m.catalog.GetSpecies(fish.TypeID); s != nil {
		rarity = s.Rarity
	}

	// 3. Bait charge
	consumeBait(w)

	// 4. Species record and one-shot flags
	fish.IsNewSpecies, fish.IsNewRecord = recordCatch(w, fish)
	if fish.IsNewRecord {
		for i := range w.Inventory {
			if w.Inventory[i].TypeID == fish.TypeID {
				w.Inventory[i].IsNewRecord = false
			}
		}
	}

	// 5. Rewards
	var gems int64
	if rarity == RarityTreasure {
		gems = int64(1 + pick(m.rng, maxTreasureGems))
		w.Gems += gems
	}
	w.XP += xpPerCatch
	w.Stats.TotalFishCaught++
	w.Inventory = append(w.Inventory, fish)

	advanceTutorial(w, TutorialReel, TutorialSell, m.emit)

	caught := fish
	m.emit.Emit(Event{Kind: EventCatch, Catch: &caught, Rarity: rarity, Gems: gems})
	m.setPhase(PhaseIdle)
	return fish
}

// consumeBait spends one charge of the equipped bait. A depleted slot is
// removed and the bait unequipped.
func consumeBait(w *WorldState) {
	id := w.ActiveBaitID
	if id == "" || w.BaitInventory[id] <= 0 {
		return
	}
	w.BaitInventory[id]--
	if w.BaitInventory[id] == 0 {
		delete(w.BaitInventory, id)
		w.ActiveBaitID = ""
	}
}

// recordCatch updates the species record and reports whether the catch is
// a new species and whether it set a new size record.
func recordCatch(w *WorldState, fish CaughtFish) (newSpecies, newRecord bool) {
	rec, seen := w.FishRecords[fish.TypeID]
	newSpecies = !rec.Discovered

	if fish.Size != nil {
		size := *fish.Size
		newRecord = size > rec.MaxSize && !newSpecies
		if !seen || rec.CaughtCount == 0 || rec.MinSize <= 0 {
			rec.MinSize = size
		} else {
			rec.MinSize = min(rec.MinSize, size)
		}
		rec.MaxSize = max(rec.MaxSize, size)
	}

	rec.CaughtCount++
	rec.Discovered = true
	if w.FishRecords == nil {
		w.FishRecords = map[string]FishRecord{}
	}
	w.FishRecords[fish.TypeID] = rec
	return newSpecies, newRecord
}
