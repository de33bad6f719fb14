package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/teloquent/teloquent/schema"
)

// FieldInfo a name:type attribute given on the command line
type FieldInfo struct {
	Name string
	Type string
}

// RelationType kind of relation declared by make:model
type RelationType string

const (
	HasOne        RelationType = "hasOne"
	HasMany       RelationType = "hasMany"
	BelongsTo     RelationType = "belongsTo"
	BelongsToMany RelationType = "belongsToMany"
)

// RelationInfo a name:Model:type relation given on the command line
type RelationInfo struct {
	Name   string
	Target string
	Type   RelationType
}

var (
	ErrInvalidName = errors.New("invalid name")
	createPattern  = regexp.MustCompile(`^create_(\w+?)_table$`)
)

// ParseFields parses "name:string,age:int". A field without type is a string.
func ParseFields(attr string) ([]FieldInfo, error) {
	var fields []FieldInfo
	for _, a := range strings.Split(attr, ",") {
		if a = strings.TrimSpace(a); a == "" {
			continue
		}

		name, typ, _ := strings.Cut(a, ":")
		if name == "" {
			return nil, fmt.Errorf("attribute format is invalid: %s", a)
		}
		if typ == "" {
			typ = "string"
		}
		fields = append(fields, FieldInfo{Name: name, Type: strings.ToLower(typ)})
	}
	return fields, nil
}

// ParseRelations parses "posts:Post:hasMany,roles:Role:belongsToMany"
func ParseRelations(rel string) ([]RelationInfo, error) {
	var rels []RelationInfo
	for _, r := range strings.Split(rel, ",") {
		if r = strings.TrimSpace(r); r == "" {
			continue
		}

		parts := strings.Split(r, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("relation format is invalid: %s", r)
		}

		rt := RelationType(parts[2])
		switch rt {
		case HasOne, HasMany, BelongsTo, BelongsToMany:
		default:
			return nil, fmt.Errorf("unknown relation type %q in %s", parts[2], r)
		}
		rels = append(rels, RelationInfo{Name: parts[0], Target: parts[1], Type: rt})
	}
	return rels, nil
}

// MigrationOptions what make:migration scaffolds
type MigrationOptions struct {
	Name string
	// Create table created by the migration, derived from a create_<table>_table name when empty
	Create string
	// Table existing table the migration alters
	Table  string
	Fields []FieldInfo
	Folder string
	Now    time.Time
}

// GenerateMigration writes <timestamp>_<name>.go into opts.Folder, registers it in the
// migrations.go index and returns its path
func GenerateMigration(opts MigrationOptions) (string, error) {
	if !isIdentifier(opts.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, opts.Name)
	}

	if opts.Create == "" && opts.Table == "" {
		if matches := createPattern.FindStringSubmatch(opts.Name); matches != nil {
			opts.Create = matches[1]
		}
	}

	if err := os.MkdirAll(opts.Folder, os.ModePerm); err != nil {
		return "", err
	}

	id := opts.Now.Format("20060102_150405") + "_" + opts.Name
	filename := filepath.Join(opts.Folder, id+".go")

	var columns []string
	for _, field := range opts.Fields {
		columns = append(columns, fmt.Sprintf("\t\t\ttable.%s(%q)", blueprintMethod(field.Type), field.Name))
	}

	up, down := "return nil", "return nil"
	switch {
	case opts.Create != "":
		columns = append(append([]string{"\t\t\ttable.Increments()"}, columns...), "\t\t\ttable.Timestamps()")
		up = fmt.Sprintf("return schema.CreateTable(ctx, %q, func(table *migrator.Blueprint) {\n%s\n\t\t})", opts.Create, strings.Join(columns, "\n"))
		down = fmt.Sprintf("return schema.DropTable(ctx, %q)", opts.Create)
	case opts.Table != "" && len(opts.Fields) > 0:
		names := make([]string, len(opts.Fields))
		for idx, field := range opts.Fields {
			names[idx] = fmt.Sprintf("%q", field.Name)
		}
		up = fmt.Sprintf("return schema.AlterTable(ctx, %q, func(table *migrator.Blueprint) {\n%s\n\t\t})", opts.Table, strings.Join(columns, "\n"))
		down = fmt.Sprintf("return schema.AlterTable(ctx, %q, func(table *migrator.Blueprint) {\n\t\t\ttable.DropColumn(%s)\n\t\t})", opts.Table, strings.Join(names, ", "))
	}

	content := fmt.Sprintf(`package %s

import (
	"context"

	"github.com/teloquent/teloquent/migrator"
)

var %s = migrator.Migration{
	Name: %q,
	Up: func(ctx context.Context, schema *migrator.Schema) error {
		%s
	},
	Down: func(ctx context.Context, schema *migrator.Schema) error {
		%s
	},
}
`, packageName(opts.Folder), exportedName(opts.Name), id, up, down)

	if err := writeNewFile(filename, content); err != nil {
		return "", err
	}

	if err := updateMigrationIndex(opts.Folder, exportedName(opts.Name)); err != nil {
		return "", err
	}
	return filename, nil
}

// updateMigrationIndex appends the migration to the All list of migrations.go, creating it if needed
func updateMigrationIndex(folder, variable string) error {
	indexFile := filepath.Join(folder, "migrations.go")

	if _, err := os.Stat(indexFile); os.IsNotExist(err) {
		content := fmt.Sprintf(`package %s

import "github.com/teloquent/teloquent/migrator"

// All migrations in the order they run
var All = []migrator.Migration{
	%s,
	// new migrations
}
`, packageName(folder), variable)
		return os.WriteFile(indexFile, []byte(content), 0o644)
	}

	data, err := os.ReadFile(indexFile)
	if err != nil {
		return err
	}

	text := string(data)
	if !strings.Contains(text, "\t"+variable+",") {
		text = strings.Replace(text, "\t// new migrations", "\t"+variable+",\n\t// new migrations", 1)
	}
	return os.WriteFile(indexFile, []byte(text), 0o644)
}

// GenerateModel writes <name>.go into folder declaring the model type, its casts and relations
func GenerateModel(name string, fields []FieldInfo, relations []RelationInfo, folder string) (string, error) {
	if !isIdentifier(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", err
	}

	variable := exportedName(name)
	filename := filepath.Join(folder, schema.NamingStrategy{}.ColumnName(variable)+".go")

	var casts []string
	for _, field := range fields {
		if cast := castConstant(field.Type); cast != "" {
			casts = append(casts, fmt.Sprintf("\t\t%q: teloquent.%s,", field.Name, cast))
		}
	}

	options := "teloquent.Options{}"
	if len(casts) > 0 {
		options = fmt.Sprintf(`teloquent.Options{
	Casts: map[string]teloquent.CastType{
%s
	},
}`, strings.Join(casts, "\n"))
	}

	var content strings.Builder
	fmt.Fprintf(&content, `package %s

import "github.com/teloquent/teloquent"

// %s model of the %s table
var %s = teloquent.Define(%q, %s)
`, packageName(folder), variable, schema.NamingStrategy{}.TableName(variable), variable, variable, options)

	if len(relations) > 0 {
		content.WriteString("\nfunc init() {\n")
		for _, r := range relations {
			fmt.Fprintf(&content, "\t%s.Relation(%q, func(m *teloquent.Model) teloquent.Relation {\n\t\treturn m.%s(%s)\n\t})\n",
				variable, r.Name, exportedName(string(r.Type)), exportedName(r.Target))
		}
		content.WriteString("}\n")
	}

	if err := writeNewFile(filename, content.String()); err != nil {
		return "", err
	}
	return filename, nil
}

func writeNewFile(filename, content string) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)
	return err
}

func blueprintMethod(t string) string {
	switch t {
	case "int", "integer":
		return "Integer"
	case "bigint":
		return "BigInteger"
	case "text":
		return "Text"
	case "bool", "boolean":
		return "Boolean"
	case "date":
		return "Date"
	case "datetime", "time":
		return "DateTime"
	case "float", "double":
		return "Float"
	case "decimal":
		return "Decimal"
	case "json", "array", "object":
		return "JSON"
	case "uuid":
		return "UUID"
	default:
		return "String"
	}
}

func castConstant(t string) string {
	switch t {
	case "int", "integer", "bigint":
		return "CastInt"
	case "float", "double", "decimal":
		return "CastFloat"
	case "bool", "boolean":
		return "CastBool"
	case "date", "datetime", "time":
		return "CastDate"
	case "json", "array":
		return "CastArray"
	case "object":
		return "CastObject"
	default:
		return ""
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// exportedName create_users_table => CreateUsersTable
func exportedName(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

func packageName(folder string) string {
	abs, err := filepath.Abs(folder)
	if err != nil {
		abs = folder
	}
	name := strings.ToLower(strings.NewReplacer("-", "", ".", "", " ", "").Replace(filepath.Base(abs)))
	if !isIdentifier(name) {
		return "main"
	}
	return name
}
