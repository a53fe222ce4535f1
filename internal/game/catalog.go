/*
Package game
File: catalog.go
Description:
    Loads and validates the static catalog (species, locations, upgrades,
    baits, bobbers, skins) and provides lookup helpers by identifier.

    The catalog is read-only once loaded. Lookups degrade gracefully:
    an unknown location resolves to the closest known identifier, an
    unknown bobber to the default bobber.
*/

package game

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultCatalog parses the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file from disk. An empty path loads the
// embedded default.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks the structural rules the simulation relies on.
func (c *Catalog) Validate() error {
	var errs []error

	locations := map[string]bool{}
	for _, l := range c.Locations {
		if l.ID == "" {
			errs = append(errs, errors.New("location with empty id"))
			continue
		}
		if locations[l.ID] {
			errs = append(errs, fmt.Errorf("duplicate location %q", l.ID))
		}
		locations[l.ID] = true
	}

	species := map[string]bool{}
	for _, s := range c.Species {
		if s.ID == "" {
			errs = append(errs, errors.New("species with empty id"))
			continue
		}
		if species[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate species %q", s.ID))
		}
		species[s.ID] = true
		if s.Rarity.Power() < 0 {
			errs = append(errs, fmt.Errorf("species %q: unknown rarity %q", s.ID, s.Rarity))
		}
		if s.MinSize > s.MaxSize {
			errs = append(errs, fmt.Errorf("species %q: min size %.1f above max size %.1f", s.ID, s.MinSize, s.MaxSize))
		}
		known := false
		for _, l := range s.Locations {
			if locations[l] {
				known = true
				break
			}
		}
		if !known {
			errs = append(errs, fmt.Errorf("species %q: no known location", s.ID))
		}
	}

	for _, u := range c.Upgrades {
		if u.MaxLevel <= 0 {
			errs = append(errs, fmt.Errorf("upgrade %q: max level must be positive", u.ID))
		}
	}

	if !species[c.DefaultSpecies] {
		errs = append(errs, fmt.Errorf("default species %q is not in the catalog", c.DefaultSpecies))
	}
	if !locations[c.DefaultLocation] {
		errs = append(errs, fmt.Errorf("default location %q is not in the catalog", c.DefaultLocation))
	}
	if c.Bobber(c.DefaultBobber) == nil {
		errs = append(errs, fmt.Errorf("default bobber %q is not in the catalog", c.DefaultBobber))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}

// GetSpecies retrieves a Species pointer by its ID.
// Returns nil if not found.
func (c *Catalog) GetSpecies(id string) *Species {
	for i := range c.Species {
		if c.Species[i].ID == id {
			return &c.Species[i]
		}
	}
	return nil
}

// GetLocation retrieves a Location pointer by its ID.
func (c *Catalog) GetLocation(id string) *Location {
	for i := range c.Locations {
		if c.Locations[i].ID == id {
			return &c.Locations[i]
		}
	}
	return nil
}

// GetUpgrade retrieves an Upgrade pointer by its ID.
func (c *Catalog) GetUpgrade(id string) *Upgrade {
	for i := range c.Upgrades {
		if c.Upgrades[i].ID == id {
			return &c.Upgrades[i]
		}
	}
	return nil
}

// GetBait retrieves a Bait pointer by its ID.
func (c *Catalog) GetBait(id string) *Bait {
	if id == "" {
		return nil
	}
	for i := range c.Baits {
		if c.Baits[i].ID == id {
			return &c.Baits[i]
		}
	}
	return nil
}

// Bobber retrieves a Bobber pointer by its ID without falling back.
func (c *Catalog) Bobber(id string) *Bobber {
	for i := range c.Bobbers {
		if c.Bobbers[i].ID == id {
			return &c.Bobbers[i]
		}
	}
	return nil
}

// GetBobber retrieves the equipped bobber, falling back to the default
// bobber (and then to a bonus-free one) when the id is unknown.
func (c *Catalog) GetBobber(id string) Bobber {
	if b := c.Bobber(id); b != nil {
		return *b
	}
	if b := c.Bobber(c.DefaultBobber); b != nil {
		return *b
	}
	return Bobber{ID: id}
}

// GetSkin retrieves a Skin pointer by its ID.
func (c *Catalog) GetSkin(id string) *Skin {
	for i := range c.Skins {
		if c.Skins[i].ID == id {
			return &c.Skins[i]
		}
	}
	return nil
}

// ResolveLocation maps an arbitrary location id onto a catalog location:
// exact match first, then the closest id by edit distance, then the
// default location.
func (c *Catalog) ResolveLocation(id string) string {
	if c.GetLocation(id) != nil {
		return id
	}
	if nearest, ok := c.nearestID(id, c.locationIDs()); ok {
		return nearest
	}
	return c.DefaultLocation
}

// ResolveSpecies maps an arbitrary species id onto a catalog species the
// same way ResolveLocation does, ending at the default species.
func (c *Catalog) ResolveSpecies(id string) *Species {
	if s := c.GetSpecies(id); s != nil {
		return s
	}
	ids := make([]string, 0, len(c.Species))
	for _, s := range c.Species {
		ids = append(ids, s.ID)
	}
	if nearest, ok := c.nearestID(id, ids); ok {
		return c.GetSpecies(nearest)
	}
	return c.defaultSpecies()
}

func (c *Catalog) defaultSpecies() *Species {
	if s := c.GetSpecies(c.DefaultSpecies); s != nil {
		return s
	}
	if len(c.Species) > 0 {
		return &c.Species[0]
	}
	return nil
}

func (c *Catalog) locationIDs() []string {
	ids := make([]string, 0, len(c.Locations))
	for _, l := range c.Locations {
		ids = append(ids, l.ID)
	}
	return ids
}

// nearestID returns the candidate with the smallest edit distance to id,
// provided it is within the limit for that candidate's length.
func (c *Catalog) nearestID(id string, candidates []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(id))
	if len(needle) < 3 {
		return "", false
	}
	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(needle, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && cand < best) {
			best = cand
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
