package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniforge/omniforge/pkg/lang"
)

func TestParseKnownLanguages(t *testing.T) {
	tests := []struct {
		name     string
		language lang.Language
		source   string
	}{
		{"go", lang.LangGo, "package main\n\nfunc main() {}\n"},
		{"python", lang.LangPython, "def f():\n    return 1\n"},
		{"javascript", lang.LangJavaScript, "function f() { return 1; }\n"},
		{"rust", lang.LangRust, "fn main() {}\n"},
		{"c", lang.LangC, "int main(void) { return 0; }\n"},
		{"ruby", lang.LangRuby, "def f\n  1\nend\n"},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.source), tt.language, "src."+tt.name)
			require.NoError(t, err)
			defer result.Close()

			require.NotNil(t, result.Tree)
			root := result.Tree.RootNode()
			assert.False(t, root.HasError(), "parse tree should be error-free:\n%s", tt.source)
			assert.Equal(t, tt.language, result.Language)
		})
	}
}

func TestParseUnsupportedLanguage(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("hello"), lang.LangUnknown, "notes.txt")
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	supported := []lang.Language{
		lang.LangGo, lang.LangRust, lang.LangPython, lang.LangTypeScript,
		lang.LangJavaScript, lang.LangJava, lang.LangC, lang.LangCPP,
		lang.LangCSharp, lang.LangRuby, lang.LangPHP, lang.LangBash,
	}
	for _, l := range supported {
		assert.True(t, Supported(l), "expected grammar for %s", l)
	}
	assert.False(t, Supported(lang.LangUnknown))
}

func TestParserReuseAcrossLanguages(t *testing.T) {
	p := New()
	defer p.Close()

	py, err := p.Parse([]byte("x = 1\n"), lang.LangPython, "a.py")
	require.NoError(t, err)
	py.Close()

	goRes, err := p.Parse([]byte("package x\n"), lang.LangGo, "a.go")
	require.NoError(t, err)
	defer goRes.Close()

	assert.False(t, goRes.Tree.RootNode().HasError())
}
