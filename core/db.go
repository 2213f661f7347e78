package core

// DBOrdering is an ORDER BY term.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CreationOrder lists records oldest first, with ties broken by id.
var CreationOrder = []DBOrdering{{Field: "created_at", Ascending: true}, {Field: "id", Ascending: true}}

// OrderByClauses renders orderings for a query builder.
func OrderByClauses(orderings ...DBOrdering) []string {
	clauses := make([]string, len(orderings))
	for i, ord := range orderings {
		clauses[i] = ord.String()
	}
	return clauses
}
