package logger_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teloquent/teloquent/logger"
)

func TestExplainSQL(t *testing.T) {
	tt := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	results := []struct {
		SQL    string
		Vars   []interface{}
		Result string
	}{
		{
			SQL:    "SELECT * FROM users WHERE name = ? AND age > ?",
			Vars:   []interface{}{"jinzhu", 18},
			Result: `SELECT * FROM users WHERE name = "jinzhu" AND age > 18`,
		},
		{
			SQL:    "INSERT INTO users (active, created_at, email, score) VALUES (?, ?, ?, ?)",
			Vars:   []interface{}{true, tt, nil, 2.5},
			Result: `INSERT INTO users (active, created_at, email, score) VALUES (true, "2024-03-01 10:30:00", NULL, 2.500000)`,
		},
		{
			SQL:    "SELECT * FROM users WHERE id IN (?, ?) AND bio = ?",
			Vars:   []interface{}{int64(1), uint(2), []byte(`say "hi"`)},
			Result: `SELECT * FROM users WHERE id IN (1, 2) AND bio = "say ""hi"""`,
		},
		{
			SQL:    "SELECT * FROM users WHERE note = ? AND id = ?",
			Vars:   []interface{}{"what?", 1},
			Result: `SELECT * FROM users WHERE note = "what?" AND id = 1`,
		},
	}

	for idx, r := range results {
		t.Run(fmt.Sprintf("#%v", idx), func(t *testing.T) {
			assert.Equal(t, r.Result, logger.ExplainSQL(r.SQL, `"`, r.Vars...))
		})
	}
}
