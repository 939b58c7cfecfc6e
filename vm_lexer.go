// vm_lexer.go: a hand-written lexer for the pragmatic JavaScript
// subset the sandboxed module loader executes (§4.E, §9). Full
// ECMAScript grammar is out of scope: this tokenizes the constructs
// CommonJS plugin code actually needs — declarations, control flow,
// function and object literals, member access and calls — not
// generators, classes, destructuring, or template literals.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  float64
	line int
}

var jsKeywords = map[string]bool{
	"var": true, "let": true, "const": true, "function": true,
	"return": true, "if": true, "else": true, "for": true, "while": true,
	"true": true, "false": true, "null": true, "undefined": true,
	"new": true, "typeof": true, "break": true, "continue": true,
	"this": true, "in": true, "of": true, "throw": true, "try": true,
	"catch": true, "finally": true, "delete": true, "instanceof": true,
}

// lexer scans source into a flat token stream, consumed by the parser.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) tokenize() ([]token, error) {
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peekByteAt(1) == '*':
			l.pos += 2
			for l.pos < len(l.src) && !(l.src[l.pos] == '*' && l.peekByteAt(1) == '/') {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	line := l.line
	c := l.src[l.pos]

	if c == '"' || c == '\'' {
		return l.readString(c, line)
	}

	if c >= '0' && c <= '9' {
		return l.readNumber(line)
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentStart(r) {
		start := l.pos
		l.pos += size
		for l.pos < len(l.src) {
			r2, size2 := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r2) {
				break
			}
			l.pos += size2
		}
		word := l.src[start:l.pos]
		if jsKeywords[word] {
			return token{kind: tokKeyword, text: word, line: line}, nil
		}
		return token{kind: tokIdent, text: word, line: line}, nil
	}

	return l.readPunct(line)
}

func (l *lexer) readString(quote byte, line int) (token, error) {
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("unterminated string literal at line %d", line)
		}
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return token{kind: tokString, text: sb.String(), line: line}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb.WriteByte(unescapeByte(l.src[l.pos]))
			l.pos++
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}
}

func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (l *lexer) readNumber(line int) (token, error) {
	start := l.pos
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("invalid number literal %q at line %d", text, line)
	}
	return token{kind: tokNumber, text: text, num: n, line: line}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// multiCharPuncts lists operators longer than one byte, longest first
// so the scanner can greedily match them.
var multiCharPuncts = []string{
	"===", "!==", "...", "=>",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=",
}

func (l *lexer) readPunct(line int) (token, error) {
	rest := l.src[l.pos:]
	for _, p := range multiCharPuncts {
		if strings.HasPrefix(rest, p) {
			l.pos += len(p)
			return token{kind: tokPunct, text: p, line: line}, nil
		}
	}
	c := l.src[l.pos]
	l.pos++
	return token{kind: tokPunct, text: string(c), line: line}, nil
}
