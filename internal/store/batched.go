package store

import "sync"

// BatchedStore buffers extraction inserts in memory using fake (negative)
// IDs. It implements DataStore so the extractor can write to it without
// knowing whether it is hitting SQLite or an in-memory buffer.
//
// The mutex protects fake ID allocation and slice appends. SymbolsByFile
// reads through to the underlying Store, which is safe for concurrent
// reads.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	Symbols        []Symbol
	TypeParams     []TypeParam
	FunctionParams []FunctionParam
	Attributes     []Attribute

	nextFakeID int64 // starts at -1, decrements
}

var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by s for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertSymbol(sym *Symbol) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sym.ID = b.allocFakeID()
	b.Symbols = append(b.Symbols, *sym)
	return sym.ID, nil
}

func (b *BatchedStore) InsertTypeParam(tp *TypeParam) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tp.ID = b.allocFakeID()
	b.TypeParams = append(b.TypeParams, *tp)
	return tp.ID, nil
}

func (b *BatchedStore) InsertFunctionParam(fp *FunctionParam) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fp.ID = b.allocFakeID()
	b.FunctionParams = append(b.FunctionParams, *fp)
	return fp.ID, nil
}

func (b *BatchedStore) InsertAttribute(a *Attribute) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.allocFakeID()
	b.Attributes = append(b.Attributes, *a)
	return a.ID, nil
}

// Len is the number of buffered rows of every kind.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Symbols) + len(b.TypeParams) + len(b.FunctionParams) + len(b.Attributes)
}

// SymbolsByFile returns symbols for a file, merging any buffered (not yet
// committed) symbols with those already in the database.
func (b *BatchedStore) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	dbSyms, err := b.store.SymbolsByFile(fileID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Symbols {
		if b.Symbols[i].FileID != nil && *b.Symbols[i].FileID == fileID {
			dbSyms = append(dbSyms, &b.Symbols[i])
		}
	}
	return dbSyms, nil
}
