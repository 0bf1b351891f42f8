//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// MinMaxBuiltin flags min/max written by hand where the builtins work.
// The estimation code is float64-heavy, so math.Min/math.Max calls and
// their integer conversion wrappers show up easily.
//
//	math.Min(a, b)                        -> min(a, b)
//	int(math.Max(float64(a), float64(b))) -> max(a, b)
//
// See: https://pkg.go.dev/builtin#min
func MinMaxBuiltin(m dsl.Matcher) {
	m.Match(
		`math.Min($a, $b)`,
	).
		Report("use the builtin min($a, $b) instead of math.Min (Go 1.21+)").
		Suggest("min($a, $b)")

	m.Match(
		`math.Max($a, $b)`,
	).
		Report("use the builtin max($a, $b) instead of math.Max (Go 1.21+)").
		Suggest("max($a, $b)")

	m.Match(
		`int(math.Min(float64($a), float64($b)))`,
	).
		Report("use min($a, $b) instead of int(math.Min(float64(...))) (Go 1.21+)").
		Suggest("min($a, $b)")

	m.Match(
		`int(math.Max(float64($a), float64($b)))`,
	).
		Report("use max($a, $b) instead of int(math.Max(float64(...))) (Go 1.21+)").
		Suggest("max($a, $b)")
}

// RangeOverInteger flags counted loops from zero that the range-over-int
// form expresses directly. Only the exact 0/</++ shape is matched; loops
// with other bounds or strides are left alone.
//
//	for i := 0; i < n; i++ { ... } -> for i := range n { ... }
//
// See: https://go.dev/doc/go1.22#language
func RangeOverInteger(m dsl.Matcher) {
	m.Match(
		`for $i := 0; $i < $n; $i++ { $*body }`,
	).
		Where(
			!m["n"].Text.Matches(`.*\.N$`), // benchmark loops are b.Loop() territory
		).
		Report("use for $i := range $n instead of for $i := 0; $i < $n; $i++ (Go 1.22+)").
		Suggest("for $i := range $n { $body }")
}
