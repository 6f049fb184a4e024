// Package tableset is an in-memory container for the related tables of an
// experimental dataset. It infers how tables relate to each other purely
// from index and column naming, and can extract a consistent sub-selection
// of every table from a selection on one designated "cardinal" table.
//
// # Relations
//
// Two tables relate when they share an index name, or when one table's index
// name appears among the other's columns, either exactly or with a single
// trailing digit ("atom" matches columns "atom", "atom1" and "atom9", but
// not "atom10" or "atoms"). Relation inference is pairwise and purely
// name-based; see BuildGraph and Container.Network.
//
// # Slicing
//
// Designate a cardinal table and slice the whole container with one key:
//
//	c := tableset.NewContainer("water")
//	c.Add(atoms) // index "atom"
//	c.Add(bonds) // columns "atom1", "atom2"
//	c.SetCardinal("atoms")
//
//	sub, err := c.Slice(tableset.List(int64(0), int64(1)))
//
// The selection is applied to "atoms" and propagated breadth-first through
// the relation graph, filtering "bonds" to the rows that reference the
// surviving atoms. Tables unrelated to the cardinal pass through unchanged.
// Results are fresh copies: slicing never aliases or mutates the source.
//
// Containers persist to single-file SQLite stores with Save and Load, and
// Import builds a container from the tables of a live PostgreSQL, MySQL or
// SQLite database. The slicing core itself performs no I/O.
package tableset
