package scan

// DimID indexes the dimension table of one scan.
type DimID int

// VarID indexes the variable table of one scan.
type VarID int

// Opt is an optional table index.
type Opt[T ~int] struct {
	v  T
	ok bool
}

func Some[T ~int](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

func None[T ~int]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

func (o Opt[T]) IsSet() bool { return o.ok }

// Is reports whether o holds v.
func (o Opt[T]) Is(v T) bool { return o.ok && o.v == v }

// Same reports whether both are unset or both hold the same index.
func (o Opt[T]) Same(p Opt[T]) bool { return o == p }
