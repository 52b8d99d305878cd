// Package lang maps source files to language tags.
package lang

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangUnknown    Language = "unknown"
)

func (l Language) String() string { return string(l) }

// SniffLimit is the number of leading bytes consulted when an extension is
// ambiguous. Detection never reads past this window.
const SniffLimit = 512

// Detect determines the language from a file path alone. It is total: every
// path yields a tag, with LangUnknown for unrecognized files.
func Detect(path string) Language {
	base := strings.ToLower(filepath.Base(path))
	switch base {
	case "dockerfile", "makefile", "rakefile":
		return LangBash
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".rs":
		return LangRust
	case ".py", ".pyw", ".pyi":
		return LangPython
	case ".ts", ".tsx":
		return LangTypeScript
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".java":
		return LangJava
	case ".c":
		return LangC
	case ".h":
		// Ambiguous between C and C++; DetectWithContent breaks the tie.
		return LangC
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx":
		return LangCPP
	case ".cs":
		return LangCSharp
	case ".rb", ".rake":
		return LangRuby
	case ".php":
		return LangPHP
	case ".sh", ".bash":
		return LangBash
	default:
		return LangUnknown
	}
}

// DetectWithContent refines Detect using a bounded content sniff. The sniff
// should be at most the first SniffLimit bytes of the file; longer slices are
// truncated. Passing nil is equivalent to Detect.
func DetectWithContent(path string, sniff []byte) Language {
	if len(sniff) > SniffLimit {
		sniff = sniff[:SniffLimit]
	}

	byExt := Detect(path)
	ext := strings.ToLower(filepath.Ext(path))

	// .h headers default to C; characteristic C++ tokens flip them.
	if ext == ".h" && looksLikeCPP(sniff) {
		return LangCPP
	}

	if byExt != LangUnknown || len(sniff) == 0 {
		return byExt
	}

	return detectShebang(sniff)
}

func looksLikeCPP(sniff []byte) bool {
	for _, tok := range [][]byte{
		[]byte("namespace"),
		[]byte("template"),
		[]byte("class "),
		[]byte("#include <iostream>"),
		[]byte("std::"),
	} {
		if bytes.Contains(sniff, tok) {
			return true
		}
	}
	return false
}

func detectShebang(sniff []byte) Language {
	if !bytes.HasPrefix(sniff, []byte("#!")) {
		return LangUnknown
	}
	line := sniff
	if i := bytes.IndexByte(sniff, '\n'); i >= 0 {
		line = sniff[:i]
	}
	switch {
	case bytes.Contains(line, []byte("python")):
		return LangPython
	case bytes.Contains(line, []byte("node")):
		return LangJavaScript
	case bytes.Contains(line, []byte("ruby")):
		return LangRuby
	case bytes.Contains(line, []byte("bash")), bytes.Contains(line, []byte("/sh")):
		return LangBash
	default:
		return LangUnknown
	}
}

// Known reports whether the tag identifies a concrete language.
func Known(l Language) bool { return l != LangUnknown }
