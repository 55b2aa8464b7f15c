package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, assembly, hash, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Assembly, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

const fileCols = "id, path, assembly, hash, last_indexed"

func scanFile(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var indexed sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.Assembly, &hash, &indexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.LastIndexed = indexed.Time
	return f, nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) queryFiles(query string, args ...any) ([]*File, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Files returns every indexed file ordered by path.
func (s *Store) Files() ([]*File, error) {
	files, err := s.queryFiles("SELECT " + fileCols + " FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	return files, nil
}

// FilesByAssembly returns the files of one assembly ordered by path.
func (s *Store) FilesByAssembly(assembly string) ([]*File, error) {
	files, err := s.queryFiles("SELECT "+fileCols+" FROM files WHERE assembly = ? ORDER BY path", assembly)
	if err != nil {
		return nil, fmt.Errorf("files by assembly: %w", err)
	}
	return files, nil
}

// Assemblies returns the distinct assembly names with at least one file.
func (s *Store) Assemblies() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT assembly FROM files ORDER BY assembly")
	if err != nil {
		return nil, fmt.Errorf("assemblies: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan assembly: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- Symbol operations ---

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	id, err := insertSymbol(s.db, sym)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	sym.ID = id
	return id, nil
}

// SymbolCols is the column list for symbol queries.
const SymbolCols = `id, file_id, name, kind, modifiers, signature_hash, doc_comment, return_type,
	start_line, start_col, end_line, end_col, parent_symbol_id`

func scanSymbol(scanner interface{ Scan(...any) error }) (*Symbol, error) {
	sym := &Symbol{}
	var mods, hash, doc, ret sql.NullString
	err := scanner.Scan(
		&sym.ID, &sym.FileID, &sym.Name, &sym.Kind, &mods, &hash, &doc, &ret,
		&sym.StartLine, &sym.StartCol, &sym.EndLine, &sym.EndCol, &sym.ParentSymbolID,
	)
	if err != nil {
		return nil, err
	}
	sym.Modifiers = unmarshalModifiers(mods.String)
	sym.SignatureHash = hash.String
	sym.DocComment = doc.String
	sym.ReturnType = ret.String
	return sym, nil
}

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var symbols []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// SymbolsByFile returns a file's declarations in declaration order.
func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE file_id = ? ORDER BY id", fileID)
}

func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE name = ? ORDER BY id", name)
}

func (s *Store) SymbolsByKind(kind string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE kind = ? ORDER BY id", kind)
}

func (s *Store) SymbolChildren(symbolID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE parent_symbol_id = ? ORDER BY id", symbolID)
}

// SymbolByID returns nil, nil when no symbol has the id.
func (s *Store) SymbolByID(id int64) (*Symbol, error) {
	sym, err := scanSymbol(s.db.QueryRow("SELECT "+SymbolCols+" FROM symbols WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbol by id: %w", err)
	}
	return sym, nil
}

// --- Type parameter operations ---

func (s *Store) InsertTypeParam(tp *TypeParam) (int64, error) {
	id, err := insertTypeParam(s.db, tp)
	if err != nil {
		return 0, fmt.Errorf("insert type param: %w", err)
	}
	tp.ID = id
	return id, nil
}

// TypeParams returns a symbol's type parameters ordered by ordinal.
func (s *Store) TypeParams(symbolID int64) ([]*TypeParam, error) {
	rows, err := s.db.Query(
		"SELECT id, symbol_id, name, ordinal, variance, constraints FROM type_parameters WHERE symbol_id = ? ORDER BY ordinal",
		symbolID,
	)
	if err != nil {
		return nil, fmt.Errorf("type params: %w", err)
	}
	defer rows.Close()
	var params []*TypeParam
	for rows.Next() {
		tp := &TypeParam{}
		var variance, constraints sql.NullString
		if err := rows.Scan(&tp.ID, &tp.SymbolID, &tp.Name, &tp.Ordinal, &variance, &constraints); err != nil {
			return nil, fmt.Errorf("scan type param: %w", err)
		}
		tp.Variance = variance.String
		tp.Constraints = constraints.String
		params = append(params, tp)
	}
	return params, rows.Err()
}

// --- Function parameter operations ---

func (s *Store) InsertFunctionParam(fp *FunctionParam) (int64, error) {
	id, err := insertFunctionParam(s.db, fp)
	if err != nil {
		return 0, fmt.Errorf("insert function param: %w", err)
	}
	fp.ID = id
	return id, nil
}

// FunctionParams returns a symbol's parameters ordered by ordinal.
func (s *Store) FunctionParams(symbolID int64) ([]*FunctionParam, error) {
	rows, err := s.db.Query(
		`SELECT id, symbol_id, name, ordinal, type_expr, modifier, has_default, default_expr
		 FROM function_parameters WHERE symbol_id = ? ORDER BY ordinal`,
		symbolID,
	)
	if err != nil {
		return nil, fmt.Errorf("function params: %w", err)
	}
	defer rows.Close()
	var params []*FunctionParam
	for rows.Next() {
		fp := &FunctionParam{}
		var name, typeExpr, modifier, def sql.NullString
		if err := rows.Scan(&fp.ID, &fp.SymbolID, &name, &fp.Ordinal, &typeExpr, &modifier, &fp.HasDefault, &def); err != nil {
			return nil, fmt.Errorf("scan function param: %w", err)
		}
		fp.Name = name.String
		fp.TypeExpr = typeExpr.String
		fp.Modifier = modifier.String
		fp.DefaultExpr = def.String
		params = append(params, fp)
	}
	return params, rows.Err()
}

// --- Attribute operations ---

func (s *Store) InsertAttribute(a *Attribute) (int64, error) {
	id, err := insertAttribute(s.db, a)
	if err != nil {
		return 0, fmt.Errorf("insert attribute %q: %w", a.Name, err)
	}
	a.ID = id
	return id, nil
}

// AttributesByTarget returns the attributes applied to a symbol in source
// order.
func (s *Store) AttributesByTarget(symbolID int64) ([]*Attribute, error) {
	rows, err := s.db.Query(
		`SELECT id, target_symbol_id, name, ordinal, positional, named, file_id, line, col
		 FROM attributes WHERE target_symbol_id = ? ORDER BY ordinal`,
		symbolID,
	)
	if err != nil {
		return nil, fmt.Errorf("attributes by target: %w", err)
	}
	defer rows.Close()
	var attrs []*Attribute
	for rows.Next() {
		a := &Attribute{}
		var positional, named sql.NullString
		if err := rows.Scan(&a.ID, &a.TargetSymbolID, &a.Name, &a.Ordinal, &positional, &named, &a.FileID, &a.Line, &a.Col); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		if a.Positional, err = unmarshalPositional(positional.String); err != nil {
			return nil, fmt.Errorf("attribute %q positional arguments: %w", a.Name, err)
		}
		if a.Named, err = unmarshalNamed(named.String); err != nil {
			return nil, fmt.Errorf("attribute %q named arguments: %w", a.Name, err)
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// --- Shared insert helpers ---

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSymbol(db execer, sym *Symbol) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO symbols (file_id, name, kind, modifiers, signature_hash, doc_comment, return_type,
			start_line, start_col, end_line, end_col, parent_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind, marshalModifiers(sym.Modifiers), sym.SignatureHash,
		sym.DocComment, sym.ReturnType,
		sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol, sym.ParentSymbolID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertTypeParam(db execer, tp *TypeParam) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO type_parameters (symbol_id, name, ordinal, variance, constraints)
		 VALUES (?, ?, ?, ?, ?)`,
		tp.SymbolID, tp.Name, tp.Ordinal, tp.Variance, tp.Constraints,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertFunctionParam(db execer, fp *FunctionParam) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO function_parameters (symbol_id, name, ordinal, type_expr, modifier, has_default, default_expr)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fp.SymbolID, fp.Name, fp.Ordinal, fp.TypeExpr, fp.Modifier, fp.HasDefault, fp.DefaultExpr,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertAttribute(db execer, a *Attribute) (int64, error) {
	positional, err := marshalPositional(a.Positional)
	if err != nil {
		return 0, fmt.Errorf("encode positional arguments: %w", err)
	}
	named, err := marshalNamed(a.Named)
	if err != nil {
		return 0, fmt.Errorf("encode named arguments: %w", err)
	}
	res, err := db.Exec(
		`INSERT INTO attributes (target_symbol_id, name, ordinal, positional, named, file_id, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.TargetSymbolID, a.Name, a.Ordinal, positional, named, a.FileID, a.Line, a.Col,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
