package analyzer

import (
	"bufio"
	"io"
	"math"

	"github.com/omniforge/omniforge/pkg/lang"
)

// decisionKeywords add one execution path each when they appear as whole
// words. The set is language-agnostic; wordOperatorLangs additionally count
// the keyword forms of the short-circuit operators.
var decisionKeywords = map[string]bool{
	"if":      true,
	"elif":    true,
	"elsif":   true,
	"for":     true,
	"foreach": true,
	"while":   true,
	"until":   true,
	"case":    true,
	"when":    true,
	"catch":   true,
	"except":  true,
	"rescue":  true,
}

var wordOperatorLangs = map[lang.Language]bool{
	lang.LangPython: true,
	lang.LangRuby:   true,
}

// lexicalCounts is the streaming fallback measurement: decision-point
// counting plus a token vocabulary proxy for Halstead volume. It works one
// line at a time and never needs the whole file.
type lexicalCounts struct {
	lang        lang.Language
	cyclomatic  int
	distinct    map[string]struct{}
	totalTokens int
}

func newLexicalCounts(language lang.Language) lexicalCounts {
	return lexicalCounts{
		lang:       language,
		cyclomatic: 1,
		distinct:   make(map[string]struct{}),
	}
}

// volume approximates Halstead volume as N * log2(n) over all tokens.
func (l *lexicalCounts) volume() float64 {
	if len(l.distinct) == 0 {
		return 0
	}
	return float64(l.totalTokens) * math.Log2(float64(len(l.distinct)))
}

// addLine tokenizes one line and updates the counters. Identifier runs and
// symbol runs are tokens; whitespace separates them. This is a lexical
// approximation by design: string and comment contents are not excluded.
func (l *lexicalCounts) addLine(line []byte) {
	countWordOps := wordOperatorLangs[l.lang]

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case isWordByte(c):
			j := i + 1
			for j < len(line) && isWordByte(line[j]) {
				j++
			}
			word := string(line[i:j])
			l.addToken(word)
			if decisionKeywords[word] {
				l.cyclomatic++
			} else if countWordOps && (word == "and" || word == "or") {
				l.cyclomatic++
			}
			i = j
		case c == '&' || c == '|':
			if i+1 < len(line) && line[i+1] == c {
				l.cyclomatic++
				l.addToken(string(line[i : i+2]))
				i += 2
				continue
			}
			l.addToken(string(c))
			i++
		case c == '?':
			l.cyclomatic++
			l.addToken("?")
			i++
		case c == ' ' || c == '\t':
			i++
		default:
			l.addToken(string(c))
			i++
		}
	}
}

func (l *lexicalCounts) addToken(tok string) {
	if l.distinct == nil {
		l.distinct = make(map[string]struct{})
	}
	l.distinct[tok] = struct{}{}
	l.totalTokens++
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// scanLexical measures a whole reader line by line.
func scanLexical(r io.Reader, language lang.Language) lexicalCounts {
	lex := newLexicalCounts(language)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)
	for scanner.Scan() {
		lex.addLine(scanner.Bytes())
	}
	return lex
}
