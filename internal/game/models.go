/*
Package game
File: models.go
Description:
    Defines the data structures used by the fishing simulation.
    The catalog half maps directly to 'catalog.yaml'; the world half is the
    persisted save record and maps to its JSON shape (camelCase keys, kept
    compatible with saves written by earlier versions of the rules).

    No logic is performed here beyond small value helpers.
*/

package game

import "time"

// Rarity is the quality bucket a catch falls into.
type Rarity string

const (
	RarityJunk      Rarity = "Junk"
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityMythic    Rarity = "Mythic"
	RarityTreasure  Rarity = "Treasure"
)

// Power orders tiers for sorting and display:
// mythic > treasure > legendary > epic > rare > common > junk.
// Unknown tiers rank below junk.
func (r Rarity) Power() int {
	switch r {
	case RarityMythic:
		return 6
	case RarityTreasure:
		return 5
	case RarityLegendary:
		return 4
	case RarityEpic:
		return 3
	case RarityRare:
		return 2
	case RarityCommon:
		return 1
	case RarityJunk:
		return 0
	default:
		return -1
	}
}

// IsItem reports whether the tier represents a non-fish find.
func (r Rarity) IsItem() bool {
	return r == RarityJunk || r == RarityTreasure
}

// ActiveTime is the part of the day a species can be caught in.
type ActiveTime string

const (
	ActiveDay   ActiveTime = "Day"
	ActiveNight ActiveTime = "Night"
	ActiveAll   ActiveTime = "All"
)

// Weather is the environmental weather tag.
type Weather string

const (
	WeatherSunny Weather = "Sunny"
	WeatherRain  Weather = "Rain"
	WeatherStorm Weather = "Storm"
)

// Well-known upgrade identifiers read by the simulation.
const (
	UpgradeRodSpeed = "rod_speed"
	UpgradeLuck     = "bait_luck"
	UpgradeTankSize = "tank_size"
	UpgradeAutoCast = "auto_cast"
	UpgradeAutoReel = "auto_reel"
	UpgradeOffline  = "offline_storage"
	UpgradeSafety   = "life_jacket"
)

// ---------------------------------------------------------------------------
// Catalog (static, read-only after load)
// ---------------------------------------------------------------------------

// Species is one catchable entry. Entries without a size range are items
// (junk, treasure) and never receive a generated size.
type Species struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Rarity      Rarity     `yaml:"rarity" json:"rarity"`
	BasePrice   int64      `yaml:"base_price" json:"basePrice"`
	ActiveTime  ActiveTime `yaml:"active_time" json:"activeTime"`
	Locations   []string   `yaml:"locations" json:"locations"`
	Weather     []Weather  `yaml:"weather,omitempty" json:"weatherPreference,omitempty"` // Empty = any weather
	MinSize     float64    `yaml:"min_size,omitempty" json:"minSize,omitempty"`
	MaxSize     float64    `yaml:"max_size,omitempty" json:"maxSize,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
}

// Sized reports whether the species is a biological catch with a size range.
func (s Species) Sized() bool {
	return s.MaxSize > 0
}

// FoundAt reports whether the species lives at the given location.
func (s Species) FoundAt(location string) bool {
	for _, l := range s.Locations {
		if l == location {
			return true
		}
	}
	return false
}

// LikesWeather reports whether the species bites in the given weather.
func (s Species) LikesWeather(w Weather) bool {
	if len(s.Weather) == 0 {
		return true
	}
	for _, pref := range s.Weather {
		if pref == w {
			return true
		}
	}
	return false
}

// ActiveAt reports whether the species is active in the given period.
func (s Species) ActiveAt(period ActiveTime) bool {
	return s.ActiveTime == ActiveAll || s.ActiveTime == "" || s.ActiveTime == period
}

// Location is a fishing spot that can be unlocked with money.
type Location struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Cost        int64  `yaml:"cost" json:"cost"`
	Description string `yaml:"description" json:"description"`
}

// Upgrade is a purchasable progression track.
type Upgrade struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Type        string  `yaml:"type" json:"type"` // SPEED, LUCK, TANK_SIZE, AUTO_CAST, AUTO_REEL, OFFLINE, SAFETY
	Description string  `yaml:"description" json:"description"`
	BaseCost    int64   `yaml:"base_cost" json:"baseCost"`
	CostMult    float64 `yaml:"cost_mult" json:"costMult"`
	MaxLevel    int     `yaml:"max_level" json:"maxLevel"`
}

// Bait is a limited-charge consumable that biases the rarity roll.
type Bait struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Description  string  `yaml:"description" json:"description"`
	Cost         int64   `yaml:"cost" json:"cost"`
	Charges      int     `yaml:"charges" json:"charges"`
	LuckBonus    float64 `yaml:"luck_bonus" json:"luckBonus"`
	RerollChance float64 `yaml:"reroll_chance" json:"rerollChance"`
}

// Bobber is a permanent float that speeds up bites and lures.
type Bobber struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	Description    string  `yaml:"description" json:"description"`
	Cost           int64   `yaml:"cost" json:"cost"`
	BiteTimeBonus  float64 `yaml:"bite_time_bonus" json:"biteTimeBonus"`
	LureSpeedBonus float64 `yaml:"lure_speed_bonus" json:"lureSpeedBonus"`
}

// Skin is an aquarium backdrop bought with gems.
type Skin struct {
	ID               string `yaml:"id" json:"id"`
	Name             string `yaml:"name" json:"name"`
	Description      string `yaml:"description" json:"description"`
	CostGems         int64  `yaml:"cost_gems" json:"costGems"`
	RequiredLocation string `yaml:"required_location,omitempty" json:"requiredLocation,omitempty"`
}

// RarityInfo carries the nominal selection weight of a tier.
type RarityInfo struct {
	Tier   Rarity  `yaml:"tier" json:"tier"`
	Label  string  `yaml:"label" json:"label"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Catalog is the root configuration struct, mapping to the entire 'catalog.yaml' file.
type Catalog struct {
	DefaultSpecies  string       `yaml:"default_species" json:"defaultSpecies"`
	DefaultLocation string       `yaml:"default_location" json:"defaultLocation"`
	DefaultBobber   string       `yaml:"default_bobber" json:"defaultBobber"`
	DefaultSkin     string       `yaml:"default_skin" json:"defaultSkin"`
	Rarities        []RarityInfo `yaml:"rarities" json:"rarities"`
	Species         []Species    `yaml:"species" json:"species"`
	Locations       []Location   `yaml:"locations" json:"locations"`
	Upgrades        []Upgrade    `yaml:"upgrades" json:"upgrades"`
	Baits           []Bait       `yaml:"baits" json:"baits"`
	Bobbers         []Bobber     `yaml:"bobbers" json:"bobbers"`
	Skins           []Skin       `yaml:"skins" json:"skins"`
}

// ---------------------------------------------------------------------------
// World (per player, persisted)
// ---------------------------------------------------------------------------

// CaughtFish is one caught instance. It lives in exactly one container
// (inventory or aquarium) and moves between them, never duplicated.
type CaughtFish struct {
	UID      string   `json:"uid"`
	TypeID   string   `json:"typeId"`
	Price    int64    `json:"price"`    // Fixed at catch time
	CaughtAt int64    `json:"caughtAt"` // Unix milliseconds
	Size     *float64 `json:"size,omitempty"`

	// Computed once at catch time relative to the records as they were then.
	IsNewRecord  bool `json:"isNewRecord,omitempty"`
	IsNewSpecies bool `json:"isNewSpecies,omitempty"`
}

// FishRecord is the per-species aggregate shown in the almanac.
type FishRecord struct {
	CaughtCount int     `json:"caughtCount"`
	MinSize     float64 `json:"minSize"`
	MaxSize     float64 `json:"maxSize"`
	Discovered  bool    `json:"discovered"`
}

// Stats are lifetime counters.
type Stats struct {
	TotalFishCaught  int64 `json:"totalFishCaught"`
	TotalMoneyEarned int64 `json:"totalMoneyEarned"`
}

// WorldState is the aggregate root for one player.
type WorldState struct {
	Money     int64          `json:"money"`
	Gems      int64          `json:"gems"`
	XP        int64          `json:"xp"`
	Inventory []CaughtFish   `json:"inventory"`
	Aquarium  []CaughtFish   `json:"aquarium"`
	Upgrades  map[string]int `json:"upgrades"`

	FishRecords map[string]FishRecord `json:"fishRecords"`

	GameTime float64 `json:"gameTime"` // Fraction of the in-game day, [0, 1)
	Weather  Weather `json:"weather"`

	ActiveLocation    string   `json:"activeLocation"`
	UnlockedLocations []string `json:"unlockedLocations"`

	BaitInventory map[string]int `json:"baitInventory"`
	ActiveBaitID  string         `json:"activeBaitId,omitempty"`

	UnlockedBobbers []string `json:"unlockedBobbers"`
	ActiveBobberID  string   `json:"activeBobberId"`

	UnlockedSkins []string `json:"unlockedSkins"`
	ActiveSkinID  string   `json:"activeSkinId"`

	Stats Stats `json:"stats"`

	PlayerName   string `json:"playerName,omitempty"`
	TutorialStep int    `json:"tutorialStep"` // 0 = done
	LastSaveTime int64  `json:"lastSaveTime"` // Unix milliseconds
	Version      int    `json:"version"`
}

// Level returns the purchased level of an upgrade (0 = not purchased).
func (w *WorldState) Level(upgradeID string) int {
	return w.Upgrades[upgradeID]
}

// HasLocation reports whether the location is unlocked.
func (w *WorldState) HasLocation(id string) bool {
	return contains(w.UnlockedLocations, id)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
