package clause

type OrderByColumn struct {
	Column string
	Desc   bool
}

// Direction returns ASC or DESC
func (column OrderByColumn) Direction() string {
	if column.Desc {
		return "DESC"
	}
	return "ASC"
}

type OrderBy struct {
	Columns []OrderByColumn
}

// Name where clause name
func (orderBy OrderBy) Name() string {
	return "ORDER BY"
}

// Build build order by clause, "a ASC, b DESC"
func (orderBy OrderBy) Build(builder Builder) {
	for idx, column := range orderBy.Columns {
		if idx > 0 {
			builder.WriteString(", ")
		}

		builder.WriteString(column.Column)
		builder.WriteByte(' ')
		builder.WriteString(column.Direction())
	}
}

// Empty reports whether there are no ordering terms
func (orderBy OrderBy) Empty() bool {
	return len(orderBy.Columns) == 0
}
