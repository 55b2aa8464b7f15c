package nameplate

import (
	"context"
	"io/fs"

	nprt "github.com/jward/nameplate/internal/runtime"
)

// RunScript loads a fresh compilation and runs the Risor script at path
// against it. Relative imports resolve from scriptsDir, or from fsys when
// it is non-nil. The store is exposed read-only through db_query. It
// returns the value of the script's last expression.
func (e *Engine) RunScript(ctx context.Context, path, scriptsDir string, fsys fs.FS, globals map[string]any) (any, error) {
	c, err := e.Compilation(ctx)
	if err != nil {
		return nil, err
	}
	opts := []nprt.RuntimeOption{nprt.WithStore(e.store), nprt.WithLogger(e.log)}
	if fsys != nil {
		opts = append(opts, nprt.WithRuntimeFS(fsys))
	}
	return nprt.NewRuntime(c, scriptsDir, opts...).RunScript(ctx, path, globals)
}
