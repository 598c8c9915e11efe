// Package catalog indexes product aliases (design/artis codes) to product
// identities for one import run.
package catalog

import (
	"strings"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Collision records an alias claimed by more than one product. The first
// product in catalog order keeps the alias.
type Collision struct {
	Alias   string
	Kept    model.ProductID
	Dropped model.ProductID
}

// Directory is an immutable alias -> product index. It is safe for
// concurrent readers once built.
type Directory struct {
	byAlias    map[string]model.ProductID
	products   int
	collisions []Collision
}

// Build indexes entries in order. Aliases are trimmed; blank aliases are
// ignored. When two entries share an alias the earlier entry wins and the
// clash is kept in Collisions.
func Build(entries []model.CatalogEntry) *Directory {
	d := &Directory{byAlias: make(map[string]model.ProductID)}
	seen := make(map[model.ProductID]bool, len(entries))
	for _, e := range entries {
		if !seen[e.ID] {
			seen[e.ID] = true
			d.products++
		}
		for _, raw := range e.Aliases {
			alias := strings.TrimSpace(raw)
			if alias == "" {
				continue
			}
			kept, ok := d.byAlias[alias]
			if !ok {
				d.byAlias[alias] = e.ID
				continue
			}
			if kept != e.ID {
				d.collisions = append(d.collisions, Collision{Alias: alias, Kept: kept, Dropped: e.ID})
			}
		}
	}
	return d
}

// Resolve returns the product for an exact, trimmed alias.
func (d *Directory) Resolve(alias string) (model.ProductID, bool) {
	id, ok := d.byAlias[strings.TrimSpace(alias)]
	return id, ok
}

// Len returns the number of indexed aliases.
func (d *Directory) Len() int { return len(d.byAlias) }

// Products returns the number of distinct products seen while building.
func (d *Directory) Products() int { return d.products }

// Collisions returns alias clashes in the order they were found.
func (d *Directory) Collisions() []Collision {
	return d.collisions
}
