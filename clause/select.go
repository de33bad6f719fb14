package clause

import "strings"

// Select select clause, renders "*" when no columns are given
type Select struct {
	Columns []string
}

func (s Select) Name() string {
	return "SELECT"
}

func (s Select) Build(builder Builder) {
	if len(s.Columns) == 0 {
		builder.WriteByte('*')
		return
	}
	builder.WriteString(strings.Join(s.Columns, ", "))
}

// From from clause
type From struct {
	Table string
}

// Name from clause name
func (from From) Name() string {
	return "FROM"
}

// Build build from clause
func (from From) Build(builder Builder) {
	builder.WriteString(from.Table)
}

// GroupBy group by clause
type GroupBy struct {
	Columns []string
}

// Name from clause name
func (groupBy GroupBy) Name() string {
	return "GROUP BY"
}

// Build build group by clause
func (groupBy GroupBy) Build(builder Builder) {
	builder.WriteString(strings.Join(groupBy.Columns, ", "))
}

// Empty reports whether there are no grouping columns
func (groupBy GroupBy) Empty() bool {
	return len(groupBy.Columns) == 0
}
