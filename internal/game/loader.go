package game

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/game/product files inside the config filesystem.
type Paths struct{}

func (Paths) DefaultPath() string {
	return path.Join("games", "default.yaml")
}
func (Paths) GamePath(game string) string {
	return path.Join("games", game+".yaml")
}
func (Paths) ProductDir(game string) string {
	return path.Join("games", game, "products")
}
func (p Paths) ProductPath(game, product string) string {
	return path.Join(p.ProductDir(game), product+".yaml")
}

// Loader reads YAML configs and merges default → game → product.
type Loader struct {
	fsys  fs.FS
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "game" or "game/product"
}

// NewLoader creates a config loader over fsys (os.DirFS or the embedded tables).
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: make(map[string]RawConfig),
	}
}

// LoadGame loads and merges default → game.
func (l *Loader) LoadGame(game string) (RawConfig, error) {
	l.mu.RLock()
	cfg, ok := l.cache[game]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	defCfg, err := l.readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	gameCfg, err := l.readYAML(l.paths.GamePath(game))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read game %s: %w", game, err)
	}
	merged := mergeRaw(defCfg, gameCfg)

	l.mu.Lock()
	l.cache[game] = merged
	l.mu.Unlock()
	return merged, nil
}

// LoadMerged loads and merges default → game → product.
func (l *Loader) LoadMerged(game, product string) (RawConfig, error) {
	key := game + "/" + product
	l.mu.RLock()
	cfg, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	gameCfg, err := l.LoadGame(game)
	if err != nil {
		return RawConfig{}, err
	}
	productCfg, err := l.readYAML(l.paths.ProductPath(game, product))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read product %s/%s: %w", game, product, err)
	}
	merged := mergeRaw(gameCfg, productCfg)

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Products lists the product files configured for game.
func (l *Loader) Products(game string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.paths.ProductDir(game))
	if err != nil {
		return nil, fmt.Errorf("list products for %s: %w", game, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func (l *Loader) readYAML(name string) (RawConfig, error) {
	var cfg RawConfig
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Slices and maps in 'b' replace the ones in 'a' wholesale, except promos,
// which are merged key by key.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Currency != "" {
		out.Currency = b.Currency
	}
	if len(b.Servers) > 0 {
		out.Servers = append([]string(nil), b.Servers...)
	}
	if len(b.Promos) > 0 {
		promos := make(map[string]float64, len(a.Promos)+len(b.Promos))
		for k, v := range a.Promos {
			promos[k] = v
		}
		for k, v := range b.Promos {
			promos[k] = v
		}
		out.Promos = promos
	}

	// pricing
	if b.Pricing.Title != "" {
		out.Pricing.Title = b.Pricing.Title
	}
	if b.Pricing.Unit != "" {
		out.Pricing.Unit = b.Pricing.Unit
	}
	if b.Pricing.UnitPrice != nil {
		out.Pricing.UnitPrice = b.Pricing.UnitPrice
	}
	if len(b.Pricing.Rates) > 0 {
		rates := make(map[string]float64, len(b.Pricing.Rates))
		for k, v := range b.Pricing.Rates {
			rates[k] = v
		}
		out.Pricing.Rates = rates
	}
	if b.Pricing.DefaultVariant != "" {
		out.Pricing.DefaultVariant = b.Pricing.DefaultVariant
	}
	if b.Pricing.HoursPerUnit != nil {
		out.Pricing.HoursPerUnit = b.Pricing.HoursPerUnit
	}
	if b.Pricing.PriorityOption != "" {
		out.Pricing.PriorityOption = b.Pricing.PriorityOption
	}
	if b.Pricing.PriorityFactor != nil {
		out.Pricing.PriorityFactor = b.Pricing.PriorityFactor
	}

	// levels
	switch {
	case out.Levels == nil && b.Levels != nil:
		c := *b.Levels
		out.Levels = &c
	case out.Levels != nil && b.Levels != nil:
		c := *out.Levels
		if b.Levels.Min != nil {
			c.Min = b.Levels.Min
		}
		if b.Levels.Max != nil {
			c.Max = b.Levels.Max
		}
		out.Levels = &c
	}

	// modifiers: declaration order matters for pricing, so a layer that
	// declares modifiers replaces the whole list
	if len(b.Modifiers) > 0 {
		out.Modifiers = append([]ModifierConfig(nil), b.Modifiers...)
	}

	return out
}
