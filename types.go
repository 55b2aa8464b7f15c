package nameplate

import (
	"github.com/jward/nameplate/internal/diag"
	"github.com/jward/nameplate/internal/naming"
	"github.com/jward/nameplate/internal/store"
	"github.com/jward/nameplate/internal/symbols"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder API. These are Go type aliases (=), identical to the
// internal types at compile time.

type Store = store.Store
type File = store.File
type StoredSymbol = store.Symbol

type Symbol = symbols.Symbol
type Compilation = symbols.Compilation
type Format = naming.Format
type FilterMode = diag.FilterMode
type Logger = diag.Logger

const (
	UseTypeArguments     = naming.UseTypeArguments
	IncludeVariance      = naming.IncludeVariance
	IncludeParameterList = naming.IncludeParameterList
)
