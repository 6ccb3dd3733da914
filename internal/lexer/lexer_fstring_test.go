package lexer

import (
	"testing"

	"github.com/aspid-lang/aspid/internal/token"
)

// F-strings desugar to `( "lit" + (expr) + "lit" + ... )`, per the
// component design's re-entrant-tokenizer note.
func TestFStringDesugarsToConcatenation(t *testing.T) {
	toks, err := Lex(`f"hello {name}"`)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := []token.Kind{
		token.LPAREN,
		token.STRING, // "hello "
		token.PLUS,
		token.LPAREN,
		token.IDENT, // name
		token.RPAREN,
		token.PLUS,
		token.STRING, // "" (empty trailing literal)
		token.RPAREN,
		token.EOF,
	}
	assertKinds(t, kinds(toks), want...)
}

func TestFStringWithExpressionAndTrailingText(t *testing.T) {
	toks, err := Lex(`f"{a + b} total"`)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	// ( "" + (a + b) + " total" )
	want := []token.Kind{
		token.LPAREN,
		token.STRING,
		token.PLUS,
		token.LPAREN,
		token.IDENT, token.PLUS, token.IDENT,
		token.RPAREN,
		token.PLUS,
		token.STRING,
		token.RPAREN,
		token.EOF,
	}
	assertKinds(t, kinds(toks), want...)
}

func TestUnterminatedFString(t *testing.T) {
	_, err := Lex(`f"hello {name`)
	if err == nil {
		t.Fatal("expected an unterminated f-string error")
	}
}

func TestFStringExpressionPositionsAreRebased(t *testing.T) {
	toks, err := Lex(`f"x={val}"`)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	for _, tok := range toks {
		if tok.Kind == token.IDENT && tok.Text == "val" {
			if tok.Span.Start.Column <= 1 {
				t.Errorf("rebased identifier column should reflect its position in the original source, got %d", tok.Span.Start.Column)
			}
			return
		}
	}
	t.Fatal("did not find the rebased 'val' identifier token")
}
