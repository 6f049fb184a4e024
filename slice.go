package tableset

// propagate applies key to the cardinal table and walks the relation graph
// breadth-first, resolving each reachable table from its first resolved
// parent. When a table is reachable through several parents the first
// resolution along BFS order stands; later edges into the same table are
// ignored. Tables outside the cardinal's connected component are absent from
// the returned map and pass through callers unsliced.
func propagate(g *Graph, byName map[string]*Table, cardinal string, key Key) (map[string]*Table, error) {
	card := byName[cardinal]
	values, err := card.ResolveKey(key)
	if err != nil {
		return nil, err
	}

	resolved := map[string]*Table{cardinal: card.SelectByIndex(values)}
	queue := []string{cardinal}
	for len(queue) > 0 {
		parentName := queue[0]
		queue = queue[1:]
		parent := resolved[parentName]

		for _, e := range g.Neighbors(parentName) {
			if _, done := resolved[e.To]; done {
				continue
			}
			child := byName[e.To]

			var sliced *Table
			switch e.Kind {
			case RelationIndexIndex:
				sliced = child.SelectByIndex(parent.IndexValueSet())
			case RelationIndexColumn:
				sliced, err = child.SelectByColumn(e.Column, parent.IndexValueSet())
				if err != nil {
					return nil, err
				}
			case RelationColumnIndex:
				// Gather the union of every surviving parent value in
				// every column that references the child's index.
				gathered := make(ValueSet)
				for _, c := range parent.cols {
					if !columnMatchesIndex(c.Name, child.indexName) {
						continue
					}
					for _, v := range c.Values {
						gathered[v] = struct{}{}
					}
				}
				sliced = child.SelectByIndex(gathered)
			default:
				continue
			}

			resolved[e.To] = sliced
			queue = append(queue, e.To)
		}
	}
	return resolved, nil
}
