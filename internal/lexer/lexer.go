// Package lexer turns Aspid source text into a flat token stream, inserting
// INDENT/DEDENT/NEWLINE layout markers and desugaring f-strings into plain
// string-concatenation token sequences.
//
// The scanning loop (readChar/peekChar over UTF-8 runes, greedy operator
// matching) follows the teacher's internal/lexer.Lexer; the indent-stack
// state machine and f-string re-entry are specific to Aspid's
// indentation-sensitive grammar and are not present in the teacher.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aspid-lang/aspid/internal/diag"
	"github.com/aspid-lang/aspid/internal/token"
)

const spacesPerIndentUnit = 4

// Lexer scans Aspid source text into tokens.
type Lexer struct {
	input        string
	position     int
	readPosition int
	line         int
	column       int
	ch           rune

	atLineStart bool
	indents     []int

	tokens []token.Token
	err    *diag.Diagnostic
}

// Lex tokenizes input in full, returning the token stream terminated by a
// single EOF token, or the first hard lexer error encountered.
func Lex(input string) ([]token.Token, *diag.Diagnostic) {
	l := &Lexer{
		input:       input,
		line:        1,
		column:      0,
		atLineStart: true,
		indents:     []int{0},
	}
	l.readChar()
	l.run()
	return l.tokens, l.err
}

func (l *Lexer) run() {
	for l.err == nil {
		if l.atLineStart {
			if l.handleLineStart() {
				continue
			}
			if l.err != nil {
				return
			}
		}
		if l.ch == 0 {
			break
		}
		if !l.scanToken() {
			return
		}
	}
	if l.err != nil {
		return
	}
	l.drainIndents()
	l.emit(token.EOF, "", l.pos())
}

// handleLineStart measures indentation for a fresh logical line. It returns
// true when the line was blank or comment-only (caller should loop again
// still at line start), false once indentation has been reconciled and
// normal token scanning should resume for the rest of the line.
func (l *Lexer) handleLineStart() bool {
	start := l.pos()
	units := 0
	spaceRun := 0

	for {
		switch l.ch {
		case '\t':
			units++
			spaceRun = 0
			l.readChar()
			continue
		case ' ':
			spaceRun++
			if spaceRun == spacesPerIndentUnit {
				units++
				spaceRun = 0
			}
			l.readChar()
			continue
		}
		break
	}

	if l.ch == 0 {
		return false
	}
	if l.ch == '\n' || l.ch == '\r' {
		l.consumeNewlineChars()
		return true
	}
	if l.ch == '#' {
		l.skipToEndOfLine()
		return true
	}

	l.atLineStart = false
	l.reconcileIndent(units, start)
	return false
}

func (l *Lexer) consumeNewlineChars() {
	if l.ch == '\r' && l.peekChar() == '\n' {
		l.readChar()
	}
	l.readChar()
}

func (l *Lexer) skipToEndOfLine() {
	for l.ch != '\n' && l.ch != '\r' && l.ch != 0 {
		l.readChar()
	}
	if l.ch != 0 {
		l.consumeNewlineChars()
	}
}

func (l *Lexer) reconcileIndent(units int, at token.Position) {
	top := l.indents[len(l.indents)-1]
	switch {
	case units > top:
		for l.indents[len(l.indents)-1] < units {
			next := l.indents[len(l.indents)-1] + 1
			l.indents = append(l.indents, next)
			l.emit(token.INDENT, "", at)
		}
	case units < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > units {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.DEDENT, "", at)
		}
		if l.indents[len(l.indents)-1] != units {
			l.fail(at, "Indentation error")
		}
	}
}

func (l *Lexer) drainIndents() {
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.DEDENT, "", l.pos())
	}
}

// scanToken consumes and emits exactly one "normal" token (not a layout
// marker), returning false if a hard error was raised.
func (l *Lexer) scanToken() bool {
	l.skipLineWhitespace()

	if l.ch == '#' {
		l.skipToEndOfLine()
		return l.err == nil
	}

	start := l.pos()

	switch {
	case l.ch == 0:
		return true
	case l.ch == '\n' || l.ch == '\r':
		l.consumeNewlineChars()
		l.emit(token.NEWLINE, "\n", start)
		l.atLineStart = true
		return true
	case l.ch == '"':
		return l.scanString(start)
	case l.ch == 'f' && l.peekChar() == '"':
		l.readChar() // consume 'f'
		return l.scanFString(start)
	case isDigit(l.ch):
		return l.scanNumber(start)
	case isIdentStart(l.ch):
		l.scanIdentifier(start)
		return true
	default:
		return l.scanOperator(start)
	}
}

func (l *Lexer) skipLineWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

func (l *Lexer) scanNumber(start token.Position) bool {
	var sb strings.Builder
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		sb.WriteRune(l.ch)
		l.readChar()
		sb.WriteRune(l.ch)
		l.readChar()
		for isHexDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		l.emit(token.NUMBER, sb.String(), start)
		return true
	}

	seenDot := false
	for isDigit(l.ch) || (l.ch == '.' && !seenDot && isDigit(l.peekChar())) {
		if l.ch == '.' {
			seenDot = true
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.emit(token.NUMBER, sb.String(), start)
	return true
}

func (l *Lexer) scanIdentifier(start token.Position) {
	var sb strings.Builder
	for isIdentPart(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()
	l.emit(token.LookupIdent(text), text, start)
}

func (l *Lexer) scanString(start token.Position) bool {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			l.fail(start, "unterminated string literal")
			return false
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	l.emit(token.STRING, sb.String(), start)
	return true
}

// scanFString desugars f"..." into the synthetic token sequence described
// in the component design: a leading '(', alternating String/('(' expr ')')
// pieces joined by '+', and a trailing ')'.
func (l *Lexer) scanFString(start token.Position) bool {
	l.readChar() // consume opening quote

	type chunk struct {
		literal  bool
		text     string
		exprSrc  string
		exprBase token.Position
	}
	var chunks []chunk
	var lit strings.Builder

	for {
		if l.ch == 0 || l.ch == '\n' {
			l.fail(start, "unterminated f-string literal")
			return false
		}
		if l.ch == '"' {
			chunks = append(chunks, chunk{literal: true, text: lit.String()})
			l.readChar()
			break
		}
		if l.ch == '{' {
			chunks = append(chunks, chunk{literal: true, text: lit.String()})
			lit.Reset()
			l.readChar()
			exprStart := l.pos()
			var exprSB strings.Builder
			depth := 1
			for {
				if l.ch == 0 || l.ch == '\n' {
					l.fail(start, "unterminated f-string expression")
					return false
				}
				if l.ch == '{' {
					depth++
				}
				if l.ch == '}' {
					depth--
					if depth == 0 {
						l.readChar()
						break
					}
				}
				exprSB.WriteRune(l.ch)
				l.readChar()
			}
			chunks = append(chunks, chunk{literal: false, exprSrc: exprSB.String(), exprBase: exprStart})
			continue
		}
		lit.WriteRune(l.ch)
		l.readChar()
	}

	l.emit(token.LPAREN, "(", start)
	for _, c := range chunks {
		if c.literal {
			l.emit(token.STRING, c.text, start)
			continue
		}
		l.emit(token.PLUS, "+", c.exprBase)
		l.emit(token.LPAREN, "(", c.exprBase)
		subTokens, subErr := Lex(c.exprSrc)
		if subErr != nil {
			l.fail(rebase(subErr.Pos, c.exprBase), "%s", subErr.Message)
			return false
		}
		for _, st := range subTokens {
			if st.Kind == token.EOF {
				continue
			}
			st.Span.Start = rebase(st.Span.Start, c.exprBase)
			st.Span.End = rebase(st.Span.End, c.exprBase)
			l.tokens = append(l.tokens, st)
		}
		l.emit(token.RPAREN, ")", c.exprBase)
		l.emit(token.PLUS, "+", c.exprBase)
	}
	l.emit(token.RPAREN, ")", start)
	return true
}

// rebase shifts a position produced by re-lexing an extracted substring back
// onto the coordinates of the original source the substring was cut from.
func rebase(p token.Position, base token.Position) token.Position {
	if p.Line == 1 {
		return token.Position{
			Line:   base.Line,
			Column: base.Column + p.Column - 1,
			Offset: base.Offset + p.Offset,
		}
	}
	return token.Position{
		Line:   base.Line + p.Line - 1,
		Column: p.Column,
		Offset: base.Offset + p.Offset,
	}
}

func (l *Lexer) scanOperator(start token.Position) bool {
	for _, op := range token.Operators() {
		if l.matchAhead(op.Text) {
			for range op.Text {
				l.readChar()
			}
			l.emit(op.Kind, op.Text, start)
			return true
		}
	}
	// Unrecognised character: emit UNDEFINED and advance one position.
	l.emit(token.UNDEFINED, string(l.ch), start)
	l.readChar()
	return true
}

func (l *Lexer) matchAhead(text string) bool {
	if l.ch == 0 {
		return false
	}
	runes := []rune(text)
	if runes[0] != l.ch {
		return false
	}
	pos := l.readPosition
	for _, r := range runes[1:] {
		if pos >= len(l.input) {
			return false
		}
		next, size := utf8.DecodeRuneInString(l.input[pos:])
		if next != r {
			return false
		}
		pos += size
	}
	return true
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) emit(kind token.Kind, text string, start token.Position) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Text: text,
		Span: token.Span{Start: start, End: l.pos()},
	})
}

func (l *Lexer) fail(at token.Position, format string, args ...any) {
	if l.err == nil {
		l.err = diag.New(at, format, args...)
	}
}

func isDigit(ch rune) bool      { return ch >= '0' && ch <= '9' }
func isHexDigit(ch rune) bool   { return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') }
func isIdentStart(ch rune) bool { return ch == '_' || unicode.IsLetter(ch) }
func isIdentPart(ch rune) bool  { return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch) }
