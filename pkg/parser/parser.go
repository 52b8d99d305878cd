// Package parser wraps tree-sitter for multi-language source parsing. It
// backs the AST path of the metrics calculator; files that exceed the
// configured size threshold bypass it entirely.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/omniforge/omniforge/pkg/lang"
)

// Parser wraps a tree-sitter parser instance. Not safe for concurrent use;
// the worker pool creates one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and its source.
type ParseResult struct {
	Tree     *sitter.Tree
	Language lang.Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source code for a known language.
func (p *Parser) Parse(source []byte, language lang.Language, path string) (*ParseResult, error) {
	tsLang, err := grammar(language)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: language,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Close releases tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// Supported reports whether a tree-sitter grammar exists for the language.
func Supported(language lang.Language) bool {
	_, err := grammar(language)
	return err == nil
}

func grammar(language lang.Language) (*sitter.Language, error) {
	switch language {
	case lang.LangGo:
		return golang.GetLanguage(), nil
	case lang.LangRust:
		return rust.GetLanguage(), nil
	case lang.LangPython:
		return python.GetLanguage(), nil
	case lang.LangTypeScript:
		return typescript.GetLanguage(), nil
	case lang.LangJavaScript:
		return javascript.GetLanguage(), nil
	case lang.LangJava:
		return java.GetLanguage(), nil
	case lang.LangC:
		return c.GetLanguage(), nil
	case lang.LangCPP:
		return cpp.GetLanguage(), nil
	case lang.LangCSharp:
		return csharp.GetLanguage(), nil
	case lang.LangRuby:
		return ruby.GetLanguage(), nil
	case lang.LangPHP:
		return php.GetLanguage(), nil
	case lang.LangBash:
		return bash.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", language)
	}
}
