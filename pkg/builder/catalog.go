package builder

import "github.com/aretw0/arbor/pkg/domain"

// Catalog is the set of capability names a generated tree may reference.
// It is usually scoped to one agent template, but callers may make it global.
type Catalog struct {
	actions    map[string]struct{}
	senses     map[string]struct{}
	actionList []string
	senseList  []string
}

// NewCatalog creates a catalog from ordered name lists. Duplicates and empty
// names are dropped; the first occurrence keeps its position.
func NewCatalog(actions, senses []string) *Catalog {
	c := &Catalog{
		actions: make(map[string]struct{}),
		senses:  make(map[string]struct{}),
	}
	c.actionList = addAll(c.actions, actions)
	c.senseList = addAll(c.senses, senses)
	return c
}

// Names is implemented by registry.Registry.
type Names interface {
	ActionNames() []string
	SenseNames() []string
}

// CatalogFromRegistry builds a catalog from whatever is registered in n.
func CatalogFromRegistry(n Names) *Catalog {
	return NewCatalog(n.ActionNames(), n.SenseNames())
}

func addAll(set map[string]struct{}, names []string) []string {
	var list []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := set[name]; ok {
			continue
		}
		set[name] = struct{}{}
		list = append(list, name)
	}
	return list
}

// HasAction reports whether name is an available action.
func (c *Catalog) HasAction(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.actions[name]
	return ok
}

// HasSense reports whether name is an available sense.
func (c *Catalog) HasSense(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.senses[name]
	return ok
}

// Allows reports whether a leaf of the given kind may reference name.
func (c *Catalog) Allows(kind domain.Kind, name string) bool {
	switch kind {
	case domain.KindAction:
		return c.HasAction(name)
	case domain.KindSense:
		return c.HasSense(name)
	default:
		return false
	}
}

// Actions returns the available action names in declaration order.
func (c *Catalog) Actions() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.actionList...)
}

// Senses returns the available sense names in declaration order.
func (c *Catalog) Senses() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.senseList...)
}
