package tableset

// RelationKind classifies how one table relates to another, viewed from the
// first table's side.
type RelationKind int

const (
	// RelationNone means no relation was found.
	RelationNone RelationKind = iota
	// RelationIndexIndex means both tables share the same index name.
	RelationIndexIndex
	// RelationIndexColumn means the first table's index name matches a
	// column of the second table; the first table is the "one" side.
	RelationIndexColumn
	// RelationColumnIndex is the mirror of RelationIndexColumn: the first
	// table holds one or more columns referencing the second table's index.
	RelationColumnIndex
)

func (k RelationKind) String() string {
	switch k {
	case RelationIndexIndex:
		return "index-index"
	case RelationIndexColumn:
		return "index-column"
	case RelationColumnIndex:
		return "column-index"
	default:
		return "none"
	}
}

// mirror returns the kind of the reverse direction.
func (k RelationKind) mirror() RelationKind {
	switch k {
	case RelationIndexColumn:
		return RelationColumnIndex
	case RelationColumnIndex:
		return RelationIndexColumn
	default:
		return k
	}
}

// pairMatch is the result of matching an ordered table pair (a, b): the
// relation for a→b, its mirror for b→a, and for index-column relations the
// column of b that won the match.
type pairMatch struct {
	forward RelationKind
	reverse RelationKind
	column  string
}

// matchTables compares two tables and classifies the relation between them.
//
// Rules run in a fixed order and a later hit overwrites an earlier one:
//
//  1. If both tables have the same index name, the pair relates index-index.
//  2. For each column of b in declaration order, if the column name equals
//     a's index name, or equals it after stripping exactly one trailing
//     decimal digit, a relates to b index-column (and b to a column-index).
//
// Rule 2 never short-circuits, so when several columns of b match a's index
// the last one in declaration order wins. The suffix test strips exactly one
// character: a column "atom1" matches the index "atom" but "atom10" does not.
func matchTables(a, b *Table) pairMatch {
	var m pairMatch
	if a.indexName == "" {
		return m
	}
	if a.indexName == b.indexName {
		m.forward = RelationIndexIndex
		m.reverse = RelationIndexIndex
	}
	for _, c := range b.cols {
		if columnMatchesIndex(c.Name, a.indexName) {
			m.forward = RelationIndexColumn
			m.reverse = RelationColumnIndex
			m.column = c.Name
		}
	}
	return m
}

// columnMatchesIndex reports whether a column name references an index name:
// either exactly, or with a single trailing decimal digit appended.
func columnMatchesIndex(column, index string) bool {
	if index == "" {
		return false
	}
	if column == index {
		return true
	}
	if len(column) != len(index)+1 {
		return false
	}
	last := column[len(column)-1]
	return last >= '0' && last <= '9' && column[:len(column)-1] == index
}
