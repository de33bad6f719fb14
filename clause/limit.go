package clause

// Limit represents a limit clause
type Limit struct {
	Limit  *int
	Offset *int
}

// Name is empty, the clause writes its own LIMIT and OFFSET keywords
func (limit Limit) Name() string {
	return ""
}

// Build constructs the LIMIT clause. OFFSET is only written after a LIMIT.
func (limit Limit) Build(builder Builder) {
	if limit.Limit == nil {
		return
	}

	builder.WriteString("LIMIT ")
	builder.AddVar(*limit.Limit)
	if limit.Offset != nil {
		builder.WriteString(" OFFSET ")
		builder.AddVar(*limit.Offset)
	}
}

// Empty reports whether no limit is set, a bare offset renders nothing
func (limit Limit) Empty() bool {
	return limit.Limit == nil
}
