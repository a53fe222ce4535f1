/*
Package game
File: shop.go
Description:
    Player-initiated economy operations: purchases, equipment, locations and
    moving catches between the inventory and the aquarium.

    Every operation either applies completely or leaves the WorldState
    untouched and reports false. A declined purchase is a normal result,
    not an error.
*/

package game

// Container names a list a catch can live in.
type Container string

const (
	ContainerInventory Container = "inventory"
	ContainerAquarium  Container = "aquarium"
)

// Shop applies economy operations against the catalog.
type Shop struct {
	catalog *Catalog
	emit    Emitter
}

// NewShop returns a Shop. A nil emitter discards events.
func NewShop(cat *Catalog, emit Emitter) *Shop {
	if emit == nil {
		emit = Discard
	}
	return &Shop{catalog: cat, emit: emit}
}

// SetCatalog swaps the catalog used for subsequent operations.
func (s *Shop) SetCatalog(cat *Catalog) {
	s.catalog = cat
}

// --- Upgrades ----------------------------------------------------------------

// BuyUpgrade buys the next level of an upgrade.
func (s *Shop) BuyUpgrade(w *WorldState, id string) bool {
	u := s.catalog.GetUpgrade(id)
	if u == nil {
		return false
	}
	cost, ok := UpgradeCost(*u, w.Level(id))
	if !ok || w.Money < cost {
		return false
	}
	w.Money -= cost
	w.Upgrades[id]++
	return true
}

// --- Bait --------------------------------------------------------------------

// BuyBait adds one pack of charges. The bait is equipped when nothing else is.
func (s *Shop) BuyBait(w *WorldState, id string) bool {
	b := s.catalog.GetBait(id)
	if b == nil || w.Money < b.Cost {
		return false
	}
	w.Money -= b.Cost
	w.BaitInventory[id] += b.Charges
	if w.ActiveBaitID == "" {
		w.ActiveBaitID = id
	}
	return true
}

// EquipBait selects an owned bait. An empty id unequips.
func (s *Shop) EquipBait(w *WorldState, id string) bool {
	if id == "" {
		w.ActiveBaitID = ""
		return true
	}
	if w.BaitInventory[id] <= 0 {
		return false
	}
	w.ActiveBaitID = id
	return true
}

// CycleBait equips the next owned bait in catalog order, wrapping through
// "no bait". It returns the newly active id.
func (s *Shop) CycleBait(w *WorldState) string {
	owned := []string{""}
	for _, b := range s.catalog.Baits {
		if w.BaitInventory[b.ID] > 0 {
			owned = append(owned, b.ID)
		}
	}

	next := 0
	for i, id := range owned {
		if id == w.ActiveBaitID {
			next = (i + 1) % len(owned)
			break
		}
	}
	w.ActiveBaitID = owned[next]
	return w.ActiveBaitID
}

// --- Bobbers & skins ---------------------------------------------------------

// BuyBobber unlocks and equips a bobber.
func (s *Shop) BuyBobber(w *WorldState, id string) bool {
	b := s.catalog.Bobber(id)
	if b == nil || contains(w.UnlockedBobbers, id) || w.Money < b.Cost {
		return false
	}
	w.Money -= b.Cost
	w.UnlockedBobbers = append(w.UnlockedBobbers, id)
	w.ActiveBobberID = id
	return true
}

func (s *Shop) EquipBobber(w *WorldState, id string) bool {
	if !contains(w.UnlockedBobbers, id) {
		return false
	}
	w.ActiveBobberID = id
	return true
}

// BuySkin unlocks and equips an aquarium skin. Skins cost gems and some
// need their location unlocked first.
func (s *Shop) BuySkin(w *WorldState, id string) bool {
	skin := s.catalog.GetSkin(id)
	if skin == nil || contains(w.UnlockedSkins, id) || w.Gems < skin.CostGems {
		return false
	}
	if skin.RequiredLocation != "" && !w.HasLocation(skin.RequiredLocation) {
		return false
	}
	w.Gems -= skin.CostGems
	w.UnlockedSkins = append(w.UnlockedSkins, id)
	w.ActiveSkinID = id
	return true
}

func (s *Shop) EquipSkin(w *WorldState, id string) bool {
	if !contains(w.UnlockedSkins, id) {
		return false
	}
	w.ActiveSkinID = id
	return true
}

// --- Locations ---------------------------------------------------------------

// UnlockLocation buys access to a location and travels there.
func (s *Shop) UnlockLocation(w *WorldState, id string) bool {
	loc := s.catalog.GetLocation(id)
	if loc == nil || w.HasLocation(id) || w.Money < loc.Cost {
		return false
	}
	w.Money -= loc.Cost
	w.UnlockedLocations = append(w.UnlockedLocations, id)
	w.ActiveLocation = id
	return true
}

// SwitchLocation travels to an unlocked location.
func (s *Shop) SwitchLocation(w *WorldState, id string) bool {
	if !w.HasLocation(id) {
		return false
	}
	w.ActiveLocation = id
	return true
}

// --- Catches -----------------------------------------------------------------

// Sell sells one catch from a container and returns the money earned.
func (s *Shop) Sell(w *WorldState, from Container, uid string) (int64, bool) {
	list := w.container(from)
	if list == nil {
		return 0, false
	}
	i := indexOf(*list, uid)
	if i < 0 {
		return 0, false
	}

	price := (*list)[i].Price
	*list = removeAt(*list, i)
	s.earn(w, price)
	advanceTutorial(w, TutorialSell, TutorialDone, s.emit)
	return price, true
}

// SellAll sells the whole inventory. The aquarium is never touched. It
// finishes the tutorial's sell step even when there is nothing to sell.
func (s *Shop) SellAll(w *WorldState) (int64, int) {
	var total int64
	for _, f := range w.Inventory {
		total += f.Price
	}
	n := len(w.Inventory)
	w.Inventory = []CaughtFish{}
	s.earn(w, total)
	advanceTutorial(w, TutorialSell, TutorialDone, s.emit)
	return total, n
}

// MoveToAquarium moves a fish from the inventory into the tank. Items
// (junk, treasure) cannot be kept and a full tank refuses new fish.
func (s *Shop) MoveToAquarium(w *WorldState, uid string) bool {
	i := indexOf(w.Inventory, uid)
	if i < 0 {
		return false
	}
	fish := w.Inventory[i]
	if sp := s.catalog.ResolveSpecies(fish.TypeID); sp != nil && sp.Rarity.IsItem() {
		return false
	}
	if len(w.Aquarium) >= TankCapacity(w.Level(UpgradeTankSize)) {
		return false
	}

	w.Inventory = removeAt(w.Inventory, i)
	w.Aquarium = append(w.Aquarium, fish)
	advanceTutorial(w, TutorialSell, TutorialDone, s.emit)
	return true
}

// MoveToInventory takes a fish out of the tank.
func (s *Shop) MoveToInventory(w *WorldState, uid string) bool {
	i := indexOf(w.Aquarium, uid)
	if i < 0 {
		return false
	}
	fish := w.Aquarium[i]
	w.Aquarium = removeAt(w.Aquarium, i)
	w.Inventory = append(w.Inventory, fish)
	return true
}

func (s *Shop) earn(w *WorldState, amount int64) {
	w.Money += amount
	w.Stats.TotalMoneyEarned += amount
}

func (w *WorldState) container(c Container) *[]CaughtFish {
	switch c {
	case ContainerInventory:
		return &w.Inventory
	case ContainerAquarium:
		return &w.Aquarium
	}
	return nil
}

func indexOf(list []CaughtFish, uid string) int {
	for i := range list {
		if list[i].UID == uid {
			return i
		}
	}
	return -1
}

func removeAt(list []CaughtFish, i int) []CaughtFish {
	out := make([]CaughtFish, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
