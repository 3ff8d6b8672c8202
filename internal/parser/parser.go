// Package parser adapts the tree-sitter C# grammar to syntax trees.
package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// sitter.Parser нельзя делить между горутинами, поэтому держим пул.
var parsers = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(csharp.GetLanguage())
		return p
	},
}

// ParseFile parses one loaded source file.
func ParseFile(ctx context.Context, file *source.File) (*syntax.Tree, error) {
	if file == nil {
		return nil, fmt.Errorf("parse: nil file")
	}
	return ParseText(ctx, file.ID, file.Path, file.Content)
}

// ParseText parses text as a C# compilation unit. Malformed input still yields
// a tree: ERROR and MISSING nodes are kept and Tree.HasErrors reports them.
// The only errors returned come from the context, which is checked before the
// parse starts; a parse in progress runs to completion.
func ParseText(ctx context.Context, file source.FileID, path string, text []byte) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	p, ok := parsers.Get().(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("parse %s: parser pool is broken", path)
	}
	defer parsers.Put(p)

	// отменяемый ctx оставляет в парсере флаг cancel, и парсер из пула
	// потом падает на любом вводе
	ts, err := p.ParseCtx(context.WithoutCancel(ctx), nil, text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer ts.Close()

	root := newConverter(text).convert(ts.RootNode())
	return syntax.NewTree(file, path, root), nil
}
