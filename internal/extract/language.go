package extract

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// sourceExts lists the file extensions treated as C# source.
var sourceExts = map[string]bool{
	".cs": true,
}

var (
	grammar     *sitter.Language
	grammarOnce sync.Once
)

// Language returns the C# grammar, loaded on first use.
func Language() *sitter.Language {
	grammarOnce.Do(func() {
		grammar = csharp.GetLanguage()
	})
	return grammar
}

// IsSourceFile reports whether path names a C# source file. Generated
// designer files are not.
func IsSourceFile(path string) bool {
	if !sourceExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	return !strings.HasSuffix(strings.ToLower(path), ".designer.cs")
}
