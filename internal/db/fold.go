package db

import (
	"database/sql/driver"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// FoldFunction is the SQLite function that case-folds text the same way
// Fold does. SQLite's built-in LOWER only folds ASCII.
const FoldFunction = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(FoldFunction, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return Fold(v), nil
			case []byte:
				return Fold(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Fold returns the Unicode case folding of s.
func Fold(s string) string {
	return cases.Fold().String(s)
}
