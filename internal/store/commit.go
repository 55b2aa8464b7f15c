package store

import "fmt"

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) IDs are remapped to real
// IDs, and every FK reference within the batch is rewritten through the
// fakeToReal mapping.
//
// Insert order respects FK dependencies:
//  1. Symbols (parents are always buffered before their children)
//  2. TypeParams
//  3. FunctionParams
//  4. Attributes
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64, len(batch.Symbols))
	remap := func(id int64) (int64, error) {
		if id >= 0 {
			return id, nil
		}
		realID, ok := fakeToReal[id]
		if !ok {
			return 0, fmt.Errorf("symbol id %d not in batch (have %d symbols)", id, len(batch.Symbols))
		}
		return realID, nil
	}

	for _, sym := range batch.Symbols {
		if sym.ParentSymbolID != nil {
			realID, err := remap(*sym.ParentSymbolID)
			if err != nil {
				return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
			}
			sym.ParentSymbolID = &realID
		}
		realID, err := insertSymbol(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
	}

	for _, tp := range batch.TypeParams {
		if tp.SymbolID, err = remap(tp.SymbolID); err != nil {
			return fmt.Errorf("commit batch: type param %q: %w", tp.Name, err)
		}
		if _, err := insertTypeParam(tx, &tp); err != nil {
			return fmt.Errorf("commit batch: type param %q: %w", tp.Name, err)
		}
	}

	for _, fp := range batch.FunctionParams {
		if fp.SymbolID, err = remap(fp.SymbolID); err != nil {
			return fmt.Errorf("commit batch: function param %q: %w", fp.Name, err)
		}
		if _, err := insertFunctionParam(tx, &fp); err != nil {
			return fmt.Errorf("commit batch: function param %q: %w", fp.Name, err)
		}
	}

	for _, a := range batch.Attributes {
		if a.TargetSymbolID, err = remap(a.TargetSymbolID); err != nil {
			return fmt.Errorf("commit batch: attribute %q: %w", a.Name, err)
		}
		if _, err := insertAttribute(tx, &a); err != nil {
			return fmt.Errorf("commit batch: attribute %q: %w", a.Name, err)
		}
	}

	return tx.Commit()
}
