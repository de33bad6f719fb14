package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileWithLineNum(t *testing.T) {
	t.Log("file line with num: ", FileWithLineNum())
}

func TestToStringKey(t *testing.T) {
	cases := []struct {
		values []interface{}
		key    string
	}{
		{[]interface{}{1}, "1"},
		{[]interface{}{int64(1)}, "1"},
		{[]interface{}{"1"}, "1"},
		{[]interface{}{[]byte("abc")}, "abc"},
		{[]interface{}{uint(7)}, "7"},
		{[]interface{}{float64(3)}, "3"},
		{[]interface{}{nil}, ""},
		{[]interface{}{1, "a"}, "1_a"},
	}

	for _, c := range cases {
		assert.Equal(t, c.key, ToStringKey(c.values...))
	}
}

func TestCheckTruth(t *testing.T) {
	assert.True(t, CheckTruth("true"))
	assert.True(t, CheckTruth("yes"))
	assert.False(t, CheckTruth("false"))
	assert.False(t, CheckTruth("FALSE"))
	assert.False(t, CheckTruth("0"))
	assert.False(t, CheckTruth(""))
}

func TestSplitNestedRelationName(t *testing.T) {
	name, nested := SplitNestedRelationName("posts.comments.author")
	assert.Equal(t, "posts", name)
	assert.Equal(t, "comments.author", nested)

	name, nested = SplitNestedRelationName("posts")
	assert.Equal(t, "posts", name)
	assert.Equal(t, "", nested)
}
