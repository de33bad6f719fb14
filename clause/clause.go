package clause

import "strings"

// Writer writer interface
type Writer interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
}

// Builder builder interface
type Builder interface {
	Writer
	AddVar(vars ...interface{})
}

// Expression expression interface
type Expression interface {
	Build(builder Builder)
}

// Interface clause interface
type Interface interface {
	Name() string
	Build(Builder)
}

// emptier is implemented by clauses that render nothing when unset
type emptier interface {
	Empty() bool
}

// Statement accumulates SQL text and its positional bindings
type Statement struct {
	SQL  strings.Builder
	Vars []interface{}
}

// WriteByte implements Writer
func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

// WriteString implements Writer
func (stmt *Statement) WriteString(s string) (int, error) {
	return stmt.SQL.WriteString(s)
}

// AddVar writes one "?" placeholder per var, separated by ", ", and records the vars in order
func (stmt *Statement) AddVar(vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			stmt.SQL.WriteString(", ")
		}
		stmt.SQL.WriteByte('?')
		stmt.Vars = append(stmt.Vars, v)
	}
}

// Build writes clauses in the given order as "NAME expression", skipping empty ones
func (stmt *Statement) Build(clauses ...Interface) {
	for _, c := range clauses {
		if e, ok := c.(emptier); ok && e.Empty() {
			continue
		}

		if stmt.SQL.Len() > 0 {
			stmt.SQL.WriteByte(' ')
		}

		if name := c.Name(); name != "" {
			stmt.SQL.WriteString(name)
			stmt.SQL.WriteByte(' ')
		}
		c.Build(stmt)
	}
}

// String returns the rendered SQL
func (stmt *Statement) String() string {
	return stmt.SQL.String()
}
