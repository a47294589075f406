// Package genres provides the static id-to-name genre dimension used by
// the file-backed deployment to translate caller-supplied genre ids
// into names before storage.
package genres

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"libroteca/internal/entities"
)

// Catalog lazily loads a static JSON array of {id, name} entries and
// answers id-to-name lookups. Safe for concurrent use.
type Catalog struct {
	path string

	mu     sync.Mutex
	loaded bool
	byID   map[int64]string
	names  []string
}

// NewCatalog creates a catalog backed by the given JSON file. The file
// is not read until the first lookup.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) load() error {
	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read genre catalog: %w", err)
	}

	var entries []entities.Genre
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse genre catalog: %w", err)
	}

	c.byID = make(map[int64]string, len(entries))
	c.names = make([]string, 0, len(entries))
	for _, entry := range entries {
		c.byID[entry.ID] = entry.Name
		c.names = append(c.names, entry.Name)
	}
	sort.Strings(c.names)
	c.loaded = true
	return nil
}

// ResolveIDs maps genre ids to names, silently dropping ids the catalog
// does not know. The lenient drop is intentional: callers supplying a
// stale id get the remaining genres rather than a failure.
func (c *Catalog) ResolveIDs(ids []int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// AllNames returns every catalog genre name in ascending order.
func (c *Catalog) AllNames() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return nil, err
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out, nil
}

// Entries returns the raw catalog entries, used to seed the relational
// genre dimension so both backends agree on the id-to-name mapping.
func (c *Catalog) Entries() ([]entities.Genre, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return nil, err
	}

	entries := make([]entities.Genre, 0, len(c.byID))
	for id, name := range c.byID {
		entries = append(entries, entities.Genre{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// DefaultEntries is the catalog shipped with a fresh install; WriteDefault
// materializes it for deployments that have no genres.json yet.
var DefaultEntries = []entities.Genre{
	{ID: 1, Name: "Drama"},
	{ID: 2, Name: "Fantasía"},
	{ID: 3, Name: "Comedy"},
	{ID: 4, Name: "Ciencia Ficción"},
	{ID: 5, Name: "Terror"},
	{ID: 6, Name: "Romance"},
	{ID: 7, Name: "Misterio"},
	{ID: 8, Name: "Aventura"},
	{ID: 9, Name: "Historia"},
	{ID: 10, Name: "Poesía"},
}

// WriteDefault writes the default catalog to path if nothing exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(DefaultEntries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
