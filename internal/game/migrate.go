/*
Package game
File: migrate.go
Description:
    The Save Migrator reconstitutes a WorldState from a persisted record
    written by any earlier version of the rules.

    1. Ordered, named migration steps rewrite the raw document. Each step
       triggers only when the field it introduces is absent, so running it
       twice changes nothing.
    2. The migrated document is reshaped to the current types field by
       field, dropping whatever cannot fit, and deep-merged over a fresh
       default world.
    3. Invariants are restored (active location unlocked, active bait owned).
    4. Offline earnings since the record's lastSaveTime are credited once.
    5. lastSaveTime is stamped to now.
*/

package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Migration is one structural upgrade of the raw save document.
type Migration struct {
	Name  string
	Apply func(doc map[string]any) bool // Reports whether it changed doc
}

// Migrations returns the ordered migration steps for a catalog. New steps
// are appended; existing ones never change.
func Migrations(cat *Catalog) []Migration {
	return []Migration{
		{Name: "bait-charge-map", Apply: migrateBaitChargeMap},
		{Name: "bobber-unlocks", Apply: initSet("unlockedBobbers", "activeBobberId", cat.DefaultBobber)},
		{Name: "skin-unlocks", Apply: initSet("unlockedSkins", "activeSkinId", cat.DefaultSkin)},
		{Name: "location-unlocks", Apply: initSet("unlockedLocations", "", cat.DefaultLocation)},
		{Name: "stats", Apply: initField("stats", func() any {
			return map[string]any{"totalFishCaught": json.Number("0"), "totalMoneyEarned": json.Number("0")}
		})},
		// Saves from before the tutorial existed belong to players who
		// already know the game.
		{Name: "tutorial-step", Apply: initField("tutorialStep", func() any { return json.Number("0") })},
	}
}

// migrateBaitChargeMap converts the single equipped bait with an embedded
// charge count into the per-bait charge map.
func migrateBaitChargeMap(doc map[string]any) bool {
	if _, ok := doc["baitInventory"]; ok {
		return false
	}
	inv := map[string]any{}
	doc["baitInventory"] = inv

	old, ok := doc["activeBait"].(map[string]any)
	delete(doc, "activeBait")
	if !ok {
		return true
	}

	id, _ := old["id"].(string)
	charges, _ := old["chargesRemaining"].(json.Number)
	if n, err := charges.Int64(); err == nil && n > 0 && id != "" {
		inv[id] = charges
		doc["activeBaitId"] = id
	}
	return true
}

// initSet creates an unlocked set holding the default when the set is
// absent, and equips the default when activeKey is given and absent.
func initSet(setKey, activeKey, def string) func(map[string]any) bool {
	return func(doc map[string]any) bool {
		changed := false
		if _, ok := doc[setKey]; !ok {
			doc[setKey] = []any{def}
			changed = true
		}
		if _, ok := doc[activeKey]; activeKey != "" && !ok {
			doc[activeKey] = def
			changed = true
		}
		return changed
	}
}

func initField(key string, value func() any) func(map[string]any) bool {
	return func(doc map[string]any) bool {
		if _, ok := doc[key]; ok {
			return false
		}
		doc[key] = value()
		return true
	}
}

// Migrator loads persisted records.
type Migrator struct {
	Catalog *Catalog
	Steps   []Migration
}

// NewMigrator returns a Migrator with the standard steps.
func NewMigrator(cat *Catalog) *Migrator {
	return &Migrator{Catalog: cat, Steps: Migrations(cat)}
}

// Result is a reconstituted world.
type Result struct {
	World          WorldState
	OfflineEarned  int64
	AppliedSteps   []string // Steps whose trigger field was absent
	OfflineElapsed time.Duration
}

// Migrate turns a raw record into a current WorldState. It only fails when
// the record is not a JSON object at all. A field of the wrong type keeps its
// default, a list element of the wrong shape is dropped, and fractional
// numbers in integer fields are floored.
func (m *Migrator) Migrate(raw []byte, now time.Time) (Result, error) {
	// 1. Raw document
	doc, err := decodeDocument(raw)
	if err != nil {
		return Result{}, fmt.Errorf("decode save: %w", err)
	}

	var res Result
	for _, step := range m.Steps {
		if step.Apply(doc) {
			res.AppliedSteps = append(res.AppliedSteps, step.Name)
		}
	}

	// 2. Merge over defaults
	defaults := NewWorldState(m.Catalog, now)
	base, err := toDocument(defaults)
	if err != nil {
		return Result{}, fmt.Errorf("encode defaults: %w", err)
	}
	fitted, _ := conform(doc, reflect.TypeOf(WorldState{}), false)
	record, _ := fitted.(map[string]any)
	// Fields dropped as unreadable count as absent.
	for _, step := range m.Steps {
		step.Apply(record)
	}
	mergeDocument(base, record)

	merged, err := json.Marshal(base)
	if err != nil {
		return Result{}, fmt.Errorf("encode merged save: %w", err)
	}
	var w WorldState
	if err := json.Unmarshal(merged, &w); err != nil {
		return Result{}, fmt.Errorf("decode merged save: %w", err)
	}

	// 3. Invariants
	Normalize(m.Catalog, &w)

	// 4. Offline earnings, only when the record knew when it was saved
	if _, ok := record["lastSaveTime"]; ok && w.LastSaveTime > 0 {
		res.OfflineElapsed = now.Sub(fromMillis(w.LastSaveTime))
		res.OfflineEarned = OfflineCredit(&w, now)
	}

	// 5. Stamp
	w.LastSaveTime = toMillis(now)
	w.Version = CurrentVersion

	res.World = w
	return res, nil
}

// Normalize restores the WorldState invariants in place.
func Normalize(cat *Catalog, w *WorldState) {
	if w.Inventory == nil {
		w.Inventory = []CaughtFish{}
	}
	if w.Aquarium == nil {
		w.Aquarium = []CaughtFish{}
	}
	if w.Upgrades == nil {
		w.Upgrades = map[string]int{}
	}
	if w.FishRecords == nil {
		w.FishRecords = map[string]FishRecord{}
	}
	if w.BaitInventory == nil {
		w.BaitInventory = map[string]int{}
	}

	// Upgrade levels stay within what the catalog sells
	for id, lvl := range w.Upgrades {
		if u := cat.GetUpgrade(id); u != nil && lvl > u.MaxLevel {
			w.Upgrades[id] = u.MaxLevel
		} else if lvl < 0 {
			w.Upgrades[id] = 0
		}
	}

	// Locations
	if !contains(w.UnlockedLocations, cat.DefaultLocation) {
		w.UnlockedLocations = append([]string{cat.DefaultLocation}, w.UnlockedLocations...)
	}
	if !w.HasLocation(w.ActiveLocation) {
		w.ActiveLocation = cat.DefaultLocation
	}

	// Bait: depleted slots are removed, the active one must have charges
	for id, n := range w.BaitInventory {
		if n <= 0 {
			delete(w.BaitInventory, id)
		}
	}
	if w.ActiveBaitID != "" && w.BaitInventory[w.ActiveBaitID] <= 0 {
		w.ActiveBaitID = ""
	}

	// Bobbers & skins
	if !contains(w.UnlockedBobbers, cat.DefaultBobber) {
		w.UnlockedBobbers = append([]string{cat.DefaultBobber}, w.UnlockedBobbers...)
	}
	if !contains(w.UnlockedBobbers, w.ActiveBobberID) {
		w.ActiveBobberID = cat.DefaultBobber
	}
	if !contains(w.UnlockedSkins, cat.DefaultSkin) {
		w.UnlockedSkins = append([]string{cat.DefaultSkin}, w.UnlockedSkins...)
	}
	if !contains(w.UnlockedSkins, w.ActiveSkinID) {
		w.ActiveSkinID = cat.DefaultSkin
	}

	// Clock
	if w.GameTime < 0 || w.GameTime >= 1 {
		w.GameTime = 0
	}
	switch w.Weather {
	case WeatherSunny, WeatherRain, WeatherStorm:
	default:
		w.Weather = WeatherSunny
	}

	if w.TutorialStep < TutorialDone || w.TutorialStep > TutorialSell {
		w.TutorialStep = TutorialDone
	}
	if w.Money < 0 {
		w.Money = 0
	}
	if w.Gems < 0 {
		w.Gems = 0
	}
}

func decodeDocument(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func toDocument(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeDocument(data)
}

// mergeDocument copies src over dst. Nested objects merge key by key; a
// null, or a value whose JSON kind disagrees with the default, keeps the
// default.
func mergeDocument(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			continue
		}
		cur, ok := dst[k]
		if !ok || cur == nil {
			dst[k] = v
			continue
		}
		if !sameKind(cur, v) {
			continue
		}
		if dm, ok := cur.(map[string]any); ok {
			mergeDocument(dm, v.(map[string]any))
			continue
		}
		dst[k] = v
	}
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case map[string]any:
		_, ok := b.(map[string]any)
		return ok
	case []any:
		_, ok := b.([]any)
		return ok
	case string:
		_, ok := b.(string)
		return ok
	case json.Number:
		_, ok := b.(json.Number)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	return false
}

// conform reshapes a decoded JSON value to fit the Go type t and reports
// whether anything usable is left. Struct fields and map entries that do not
// fit are dropped so they fall back to their defaults. In strict mode, used
// for list elements, a struct with any misfit field is dropped whole.
func conform(v any, t reflect.Type, strict bool) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch t.Kind() {
	case reflect.Pointer:
		return conform(v, t.Elem(), strict)
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			fv, present := m[name]
			if name == "" || !present {
				continue
			}
			c, ok := conform(fv, f.Type, strict)
			if !ok {
				if strict {
					return nil, false
				}
				continue
			}
			out[name] = c
		}
		return out, true
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, ev := range m {
			if c, ok := conform(ev, t.Elem(), strict); ok {
				out[k] = c
			}
		}
		return out, true
	case reflect.Slice:
		list, ok := v.([]any)
		if !ok {
			return nil, false
		}
		out := make([]any, 0, len(list))
		for _, ev := range list {
			if c, ok := conform(ev, t.Elem(), true); ok {
				out = append(out, c)
			}
		}
		return out, true
	case reflect.String:
		s, ok := v.(string)
		return s, ok
	case reflect.Bool:
		b, ok := v.(bool)
		return b, ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(json.Number)
		if !ok {
			return nil, false
		}
		return wholeNumber(n, t)
	case reflect.Float32, reflect.Float64:
		n, ok := v.(json.Number)
		if !ok {
			return nil, false
		}
		if _, err := n.Float64(); err != nil {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

// wholeNumber floors n into the range of the integer type t.
func wholeNumber(n json.Number, t reflect.Type) (any, bool) {
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, false
		}
		i = int64(math.Floor(f))
	}
	if reflect.Zero(t).OverflowInt(i) {
		return nil, false
	}
	return json.Number(strconv.FormatInt(i, 10)), true
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
