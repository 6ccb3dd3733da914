package lexer

import (
	"testing"

	"github.com/aspid-lang/aspid/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func assertKinds(t *testing.T, got []token.Kind, want ...token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestIndentDedentBalance(t *testing.T) {
	src := "if true:\n    x: int = 1\n    y: int = 2\nprint(x)\n"
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}

	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced INDENT/DEDENT, net depth = %d", depth)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token should be EOF, got %v", toks[len(toks)-1].Kind)
	}
}

func TestIndentSpacesVsTabs(t *testing.T) {
	// 4 spaces == 1 tab == 1 indent unit.
	spaceToks, err := Lex("if true:\n    x: int = 1\n")
	if err != nil {
		t.Fatalf("space variant: %v", err)
	}
	tabToks, err := Lex("if true:\n\tx: int = 1\n")
	if err != nil {
		t.Fatalf("tab variant: %v", err)
	}
	if kinds(spaceToks)[0] != kinds(tabToks)[0] {
		t.Fatal("space and tab indentation should produce equivalent token streams")
	}
	spaceIndents, tabIndents := 0, 0
	for _, k := range kinds(spaceToks) {
		if k == token.INDENT {
			spaceIndents++
		}
	}
	for _, k := range kinds(tabToks) {
		if k == token.INDENT {
			tabIndents++
		}
	}
	if spaceIndents != 1 || tabIndents != 1 {
		t.Errorf("expected exactly one INDENT for each variant, got %d (spaces) and %d (tabs)", spaceIndents, tabIndents)
	}
}

// A trailing run of fewer than four spaces is not an indent unit, so a
// six-space line measures the same as a four-space one.
func TestPartialIndentUnitIsIgnored(t *testing.T) {
	src := "if true:\n    x: int = 1\n      y: int = 2\n"
	_, err := Lex(src)
	if err != nil {
		t.Fatalf("six spaces should measure as one indent unit, got error: %v", err)
	}
}

func TestBlankAndCommentLinesDoNotAffectIndentation(t *testing.T) {
	src := "if true:\n    x: int = 1\n\n    # a comment\n    y: int = 2\n"
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	indentCount := 0
	for _, k := range kinds(toks) {
		if k == token.INDENT {
			indentCount++
		}
	}
	if indentCount != 1 {
		t.Errorf("blank lines and comments should not open new INDENT levels, got %d INDENTs", indentCount)
	}
}

func TestEmptyInput(t *testing.T) {
	toks, err := Lex("")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	assertKinds(t, kinds(toks), token.EOF)
}

func TestTrailingNewlineOnlyInput(t *testing.T) {
	toks, err := Lex("\n")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	assertKinds(t, kinds(toks), token.EOF)
}

func TestHexLiteral(t *testing.T) {
	toks, err := Lex("0xFF")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[0].Kind != token.NUMBER || toks[0].Text != "0xFF" {
		t.Fatalf("got %v %q, want NUMBER \"0xFF\"", toks[0].Kind, toks[0].Text)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := Lex(`print("unterminated`)
	if err == nil {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestCompoundAssignOperators(t *testing.T) {
	toks, err := Lex("i += 1\nj -= 2\n")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	var found []token.Kind
	for _, tok := range toks {
		if tok.Kind == token.PLUS_EQ || tok.Kind == token.MINUS_EQ {
			found = append(found, tok.Kind)
		}
	}
	assertKinds(t, found, token.PLUS_EQ, token.MINUS_EQ)
}
