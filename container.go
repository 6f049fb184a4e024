package tableset

import (
	"fmt"
	"sort"
)

// Container is a registry of named tables with an optional cardinal
// designation and free-form string metadata. Table insertion order is kept:
// it fixes the traversal order of Slice and Network, so two containers built
// from the same sequence of Add calls behave identically.
//
// A Container is not safe for concurrent mutation; callers needing
// concurrency must serialize writes externally. Sliced and copied containers
// share no storage with their source, so previously returned results stay
// stable when the source changes.
type Container struct {
	name        string
	description string
	meta        map[string]string
	order       []string
	tables      map[string]*Table
	cardinal    string
}

// NewContainer creates an empty container.
func NewContainer(name string) *Container {
	return &Container{
		name:   name,
		meta:   make(map[string]string),
		tables: make(map[string]*Table),
	}
}

// Name returns the container name.
func (c *Container) Name() string { return c.name }

// Description returns the free-form description.
func (c *Container) Description() string { return c.description }

// SetDescription sets the free-form description.
func (c *Container) SetDescription(d string) { c.description = d }

// SetMeta sets a free-form metadata field.
func (c *Container) SetMeta(key, value string) { c.meta[key] = value }

// Meta returns a free-form metadata field.
func (c *Container) Meta(key string) (string, bool) {
	v, ok := c.meta[key]
	return v, ok
}

// MetaKeys returns every metadata key, sorted.
func (c *Container) MetaKeys() []string {
	keys := make([]string, 0, len(c.meta))
	for k := range c.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add registers a table under its name. Adding a second table with an
// existing name fails with a DuplicateNameError.
func (c *Container) Add(t *Table) error {
	if t == nil {
		return fmt.Errorf("tableset: nil table")
	}
	if _, dup := c.tables[t.name]; dup {
		return &DuplicateNameError{Name: t.name}
	}
	c.tables[t.name] = t
	c.order = append(c.order, t.name)
	return nil
}

// Remove drops the named table. The current cardinal cannot be removed;
// clear the cardinal first.
func (c *Container) Remove(name string) error {
	if _, ok := c.tables[name]; !ok {
		return &UnknownNameError{Name: name}
	}
	if name == c.cardinal {
		return fmt.Errorf("tableset: table %q is the cardinal table; clear the cardinal before removing it", name)
	}
	delete(c.tables, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetCardinal designates the named table as the cardinal table.
func (c *Container) SetCardinal(name string) error {
	if _, ok := c.tables[name]; !ok {
		return &UnknownNameError{Name: name}
	}
	c.cardinal = name
	return nil
}

// ClearCardinal removes the cardinal designation.
func (c *Container) ClearCardinal() { c.cardinal = "" }

// Cardinal returns the cardinal table name, or "" when none is set.
func (c *Container) Cardinal() string { return c.cardinal }

// Len returns the number of tables.
func (c *Container) Len() int { return len(c.order) }

// Names returns the table names in insertion order.
func (c *Container) Names() []string {
	return append([]string(nil), c.order...)
}

// Get returns the named table.
func (c *Container) Get(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

func (c *Container) tablesInOrder() []*Table {
	out := make([]*Table, len(c.order))
	for i, n := range c.order {
		out[i] = c.tables[n]
	}
	return out
}

// Network builds and returns the relation graph over the current tables.
// The graph is derived fresh on every call, so it is never stale after
// Add or Remove.
func (c *Container) Network() (*Graph, error) {
	return BuildGraph(c.tablesInOrder()...)
}

// Slice applies key to the cardinal table and propagates the selection to
// every related table, returning a new container with the same name,
// metadata and cardinal designation. Tables unreachable from the cardinal
// are carried over unsliced. The receiver is never modified; with no
// cardinal set Slice fails with a NoCardinalError, and an unresolvable key
// fails with a SelectionError before any result is assembled.
func (c *Container) Slice(key Key) (*Container, error) {
	if c.cardinal == "" {
		return nil, &NoCardinalError{Container: c.name}
	}
	g, err := c.Network()
	if err != nil {
		return nil, err
	}
	resolved, err := propagate(g, c.tables, c.cardinal, key)
	if err != nil {
		return nil, err
	}

	out := c.emptyLike()
	for _, name := range c.order {
		t := resolved[name]
		if t == nil {
			t = c.tables[name].Copy()
		}
		out.tables[name] = t
		out.order = append(out.order, name)
	}
	return out, nil
}

// Copy returns a deep copy of the container: every table, the metadata and
// the cardinal designation. The copy's lifetime is fully independent.
func (c *Container) Copy() *Container {
	out := c.emptyLike()
	for _, name := range c.order {
		out.tables[name] = c.tables[name].Copy()
		out.order = append(out.order, name)
	}
	return out
}

func (c *Container) emptyLike() *Container {
	out := NewContainer(c.name)
	out.description = c.description
	out.cardinal = c.cardinal
	for k, v := range c.meta {
		out.meta[k] = v
	}
	return out
}
