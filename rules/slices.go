//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SortHelpers flags the pre-generics sort helpers. Length vectors and fork
// length samples are plain float64 slices, so sort.Float64s is the natural
// slip here.
//
//	sort.Float64s(xs) -> slices.Sort(xs)
//
// See: https://pkg.go.dev/slices#Sort
func SortHelpers(m dsl.Matcher) {
	m.Match(
		`sort.Ints($s)`,
		`sort.Strings($s)`,
		`sort.Float64s($s)`,
	).
		Report("use slices.Sort($s) instead of the type-specific sort helpers (Go 1.21+)").
		Suggest("slices.Sort($s)")

	m.Match(
		`sort.IntsAreSorted($s)`,
		`sort.StringsAreSorted($s)`,
		`sort.Float64sAreSorted($s)`,
	).
		Report("use slices.IsSorted($s) instead of the type-specific sorted checks (Go 1.21+)").
		Suggest("slices.IsSorted($s)")
}

// SliceClone flags manual clone idioms where slices.Clone reads better.
//
//	append([]T(nil), s...) -> slices.Clone(s)
//
// See: https://pkg.go.dev/slices#Clone
func SliceClone(m dsl.Matcher) {
	m.Match(
		`append([]$typ(nil), $s...)`,
		`append([]$typ{}, $s...)`,
	).
		Report("use slices.Clone($s) instead of the append clone idiom (Go 1.21+)")

	m.Match(
		`append($s[:0:0], $s...)`,
	).
		Report("use slices.Clone($s) instead of append($s[:0:0], $s...) (Go 1.21+)")
}
