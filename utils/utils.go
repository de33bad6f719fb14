package utils

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

var sourceRoot string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get the module source directory with various operating systems
	sourceRoot = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(filepath.Dir(file))
	return filepath.ToSlash(dir) + "/"
}

// FileWithLineNum return the file name and line number of the first caller outside this module
func FileWithLineNum() string {
	// the second caller usually from teloquent internal, so set i start from 2
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, sourceRoot) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}

	return ""
}

// CheckTruth check string true or not
func CheckTruth(vals ...string) bool {
	for _, val := range vals {
		if val != "" && !strings.EqualFold(val, "false") && val != "0" {
			return true
		}
	}
	return false
}

// ToStringKey joins values into an identity key, so that int64(1), 1 and "1" map to the same key
func ToStringKey(values ...interface{}) string {
	results := make([]string, len(values))

	for idx, value := range values {
		if valuer, ok := value.(driver.Valuer); ok {
			value, _ = valuer.Value()
		}

		switch v := value.(type) {
		case nil:
			results[idx] = ""
		case string:
			results[idx] = v
		case []byte:
			results[idx] = string(v)
		case uint:
			results[idx] = strconv.FormatUint(uint64(v), 10)
		default:
			rv := reflect.Indirect(reflect.ValueOf(v))
			if !rv.IsValid() {
				continue
			}
			results[idx] = fmt.Sprint(rv.Interface())
		}
	}

	return strings.Join(results, "_")
}

func Contains(elems []string, elem string) bool {
	for _, e := range elems {
		if elem == e {
			return true
		}
	}
	return false
}

// SplitNestedRelationName splits "posts.comments.author" into "posts" and "comments.author"
func SplitNestedRelationName(path string) (string, string) {
	name, nested, _ := strings.Cut(path, ".")
	return name, nested
}
