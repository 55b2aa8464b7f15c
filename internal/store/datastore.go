package store

// DataStore is the interface for extraction-phase data access. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for parallel
// extraction) implement this interface.
type DataStore interface {
	// Extraction inserts; each returns the assigned ID.
	InsertSymbol(sym *Symbol) (int64, error)
	InsertTypeParam(tp *TypeParam) (int64, error)
	InsertFunctionParam(fp *FunctionParam) (int64, error)
	InsertAttribute(a *Attribute) (int64, error)

	SymbolsByFile(fileID int64) ([]*Symbol, error)
}

var _ DataStore = (*Store)(nil)
