package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer derives default table, foreign key and pivot table names from model names
type Namer interface {
	TableName(model string) string
	ForeignKey(model string) string
	JoinTableName(first, second string) string
}

// NamingStrategy default naming strategy.
//
//	TableName("User")               // users
//	ForeignKey("User")              // user_id
//	JoinTableName("User", "Role")   // role_user
//
// With SnakeCase, "BlogPost" becomes blog_posts and blog_post_id instead of
// blogposts and blogpost_id.
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
	SnakeCase     bool
}

// TableName convert model name to table name
func (ns NamingStrategy) TableName(model string) string {
	if ns.SingularTable {
		return ns.TablePrefix + ns.normalize(model)
	}
	return ns.TablePrefix + inflection.Plural(ns.normalize(model))
}

// ForeignKey convert model name to the default foreign key column
func (ns NamingStrategy) ForeignKey(model string) string {
	return inflection.Singular(ns.normalize(model)) + "_id"
}

// JoinTableName pivot table of two models: both singular names sorted and joined with "_"
func (ns NamingStrategy) JoinTableName(first, second string) string {
	names := []string{inflection.Singular(ns.normalize(first)), inflection.Singular(ns.normalize(second))}
	sort.Strings(names)
	return ns.TablePrefix + strings.Join(names, "_")
}

// ColumnName convert a Go style name to a snake case column name, e.g. "UserID" to "user_id"
func (ns NamingStrategy) ColumnName(name string) string {
	return toDBName(name)
}

func (ns NamingStrategy) normalize(name string) string {
	if ns.SnakeCase {
		return toDBName(name)
	}
	return lower.String(name)
}

var (
	lower = cases.Lower(language.Und)
	smap  sync.Map
	// https://github.com/golang/lint/blob/master/lint.go#L770
	commonInitialisms         = []string{"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS"}
	commonInitialismsReplacer *strings.Replacer
)

func init() {
	title := cases.Title(language.Und)
	var commonInitialismsForReplacer []string
	for _, initialism := range commonInitialisms {
		commonInitialismsForReplacer = append(commonInitialismsForReplacer, initialism, title.String(initialism))
	}
	commonInitialismsReplacer = strings.NewReplacer(commonInitialismsForReplacer...)
}

func toDBName(name string) string {
	if name == "" {
		return ""
	} else if v, ok := smap.Load(name); ok {
		return fmt.Sprint(v)
	}

	var (
		value                          = commonInitialismsReplacer.Replace(name)
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool // upper case == true
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	result := buf.String()
	smap.Store(name, result)
	return result
}
