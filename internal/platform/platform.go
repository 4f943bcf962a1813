// Package platform catalogs the hardware platforms a release can target and
// resolves the names scraped sources use for them.
package platform

import (
	"slices"
	"strings"

	"gamecal/internal/alias"
	"gamecal/internal/ident"
)

// Platform is a release target such as "Playstation 5".
type Platform struct {
	ID        int64  `json:"-"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`

	aliases *alias.Ledger
}

// Aliases returns every name the platform answers to, in registration order.
func (p *Platform) Aliases() []string {
	return p.aliases.Values()
}

// IsAlias reports whether name is an exact alias of the platform.
func (p *Platform) IsAlias(name string) bool {
	return p.aliases.Has(name)
}

// Catalog is an ordered set of platforms with exact-name lookup. Catalogs are
// built once and then only read.
type Catalog struct {
	seq       *ident.Sequence
	platforms []*Platform
	byID      map[int64]*Platform
	byAlias   map[string]*Platform
}

// NewCatalog returns an empty catalog that draws identifiers from seq.
func NewCatalog(seq *ident.Sequence) *Catalog {
	if seq == nil {
		seq = ident.NewSequence(0)
	}
	return &Catalog{
		seq:     seq,
		byID:    make(map[int64]*Platform),
		byAlias: make(map[string]*Platform),
	}
}

// Register adds a platform. The name and short name are always aliases. When
// two platforms claim the same alias the earlier registration keeps it.
func (c *Catalog) Register(name, shortName string, aliases ...string) *Platform {
	p := &Platform{
		ID:        c.seq.Next(),
		Name:      name,
		ShortName: shortName,
		aliases:   alias.New(name, shortName),
	}
	p.aliases.AddAll(aliases)
	c.platforms = append(c.platforms, p)
	c.byID[p.ID] = p
	for _, value := range p.aliases.Values() {
		if _, taken := c.byAlias[value]; !taken {
			c.byAlias[value] = p
		}
	}
	return p
}

// ResolveByName returns the platform with an exact alias match for name.
// Surrounding whitespace is ignored.
func (c *Catalog) ResolveByName(name string) (*Platform, bool) {
	p, ok := c.byAlias[strings.TrimSpace(name)]
	return p, ok
}

// ResolveByID returns the platform registered under id.
func (c *Catalog) ResolveByID(id int64) (*Platform, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// All returns the registered platforms in registration order.
func (c *Catalog) All() []*Platform {
	return slices.Clone(c.platforms)
}

// Len returns the number of registered platforms.
func (c *Catalog) Len() int {
	return len(c.platforms)
}
