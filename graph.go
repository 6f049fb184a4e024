package tableset

import "fmt"

// Edge is one directed relation in a Graph.
type Edge struct {
	// To is the name of the related table.
	To string
	// Kind is the relation viewed from the owning node's side.
	Kind RelationKind
	// Column is set for index-column edges: the column of To that won the
	// match against the owning node's index.
	Column string
}

// Graph records the inferred relations between a set of tables. Nodes are
// table names; each related pair carries one directed relation per
// direction. Neighbor order is derived from the order the tables were given
// in, so a graph built from the same table sequence always traverses the
// same way.
type Graph struct {
	order []string
	adj   map[string][]Edge
}

// BuildGraph infers the relation graph over the given tables. The matcher
// runs once per ordered pair (in the order the tables are given), and a
// later pair's result overwrites an earlier one for the same two directions.
// Tables related to nothing become edge-less nodes. Two distinct tables
// sharing a name is an InvariantError.
func BuildGraph(tables ...*Table) (*Graph, error) {
	byName := make(map[string]*Table, len(tables))
	order := make([]string, 0, len(tables))
	for _, t := range tables {
		if t == nil {
			return nil, &InvariantError{Reason: "nil table"}
		}
		if _, dup := byName[t.name]; dup {
			return nil, &InvariantError{Reason: fmt.Sprintf("two distinct tables named %q", t.name)}
		}
		byName[t.name] = t
		order = append(order, t.name)
	}

	kinds := make(map[string]map[string]RelationKind, len(order))
	columns := make(map[string]map[string]string, len(order))
	record := func(from, to string, k RelationKind, column string) {
		if kinds[from] == nil {
			kinds[from] = make(map[string]RelationKind)
			columns[from] = make(map[string]string)
		}
		kinds[from][to] = k
		if k == RelationIndexColumn {
			columns[from][to] = column
		} else {
			delete(columns[from], to)
		}
	}

	// Both mirrored directions are written by the same matcher call, so a
	// later pair can overwrite an earlier result but never break symmetry.
	for _, an := range order {
		for _, bn := range order {
			if an == bn {
				continue
			}
			m := matchTables(byName[an], byName[bn])
			if m.forward == RelationNone {
				continue
			}
			record(an, bn, m.forward, m.column)
			record(bn, an, m.reverse, "")
		}
	}

	for from, tos := range kinds {
		for to, k := range tos {
			if kinds[to][from] != k.mirror() {
				return nil, &InvariantError{
					Reason: fmt.Sprintf("relation %s→%s is %s but %s→%s is %s",
						from, to, k, to, from, kinds[to][from]),
				}
			}
		}
	}

	g := &Graph{
		order: order,
		adj:   make(map[string][]Edge, len(order)),
	}
	for _, an := range order {
		g.adj[an] = nil
		for _, bn := range order {
			if k, ok := kinds[an][bn]; ok {
				g.adj[an] = append(g.adj[an], Edge{To: bn, Kind: k, Column: columns[an][bn]})
			}
		}
	}
	return g, nil
}

// Nodes returns every table name in the graph, in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// HasNode reports whether the graph holds a node for the named table.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// Neighbors returns the directed relations from the named table, in the
// graph's deterministic order.
func (g *Graph) Neighbors(name string) []Edge {
	return append([]Edge(nil), g.adj[name]...)
}

// Relation returns the relation kind recorded for from→to, or RelationNone.
func (g *Graph) Relation(from, to string) RelationKind {
	for _, e := range g.adj[from] {
		if e.To == to {
			return e.Kind
		}
	}
	return RelationNone
}
