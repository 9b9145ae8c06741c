package core

// DBOrdering is a single-key sort applied by a repository query.
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

// DBPaging is an offset/limit window applied by a repository query.
// A zero Limit means no windowing.
type DBPaging struct {
	Offset int
	Limit  int
}
