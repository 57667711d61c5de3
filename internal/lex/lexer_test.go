package lex

import "testing"

func scanAll(t *testing.T, input string) []Token {
	t.Helper()
	toks, err := New(input).Tokens()
	if err != nil {
		t.Fatalf("Tokens(%q) returned error: %v", input, err)
	}
	return toks
}

func assertKinds(t *testing.T, toks []Token, want ...Kind) {
	t.Helper()
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScanQuotedString(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	assertKinds(t, toks, QuotedString, EOF)
	if toks[0].Value != "hello world" {
		t.Errorf("got value %q, want %q", toks[0].Value, "hello world")
	}
}

func TestScanQuotedStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a \"quoted\" word"`)
	assertKinds(t, toks, QuotedString, EOF)
	if toks[0].Value != `a "quoted" word` {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanSingleQuoted(t *testing.T) {
	toks := scanAll(t, `'single'`)
	assertKinds(t, toks, QuotedString, EOF)
	if toks[0].Value != "single" {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := New(`"unterminated`).Tokens()
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestScanAtID(t *testing.T) {
	toks := scanAll(t, "@person:42")
	assertKinds(t, toks, AtID, EOF)
	if toks[0].Value != "person:42" {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanBareAtIsError(t *testing.T) {
	_, err := New("@").Tokens()
	if err == nil {
		t.Fatal("expected an error for a bare '@'")
	}
}

func TestScanTypeFilter(t *testing.T) {
	toks := scanAll(t, "type:person,company")
	assertKinds(t, toks, TypeFilter, EOF)
	if toks[0].Value != "person,company" {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanTypeFilterStopsAtTilde(t *testing.T) {
	toks := scanAll(t, `type:person~"founder"`)
	assertKinds(t, toks, TypeFilter, Tilde, QuotedString, EOF)
	if toks[0].Value != "person" {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanBareTermIsNotTypeFilter(t *testing.T) {
	toks := scanAll(t, "knows")
	assertKinds(t, toks, Term, EOF)
	if toks[0].Value != "knows" {
		t.Errorf("got value %q", toks[0].Value)
	}
}

func TestScanOutgoingHop(t *testing.T) {
	toks := scanAll(t, "-[knows]->")
	assertKinds(t, toks, ArrowOutStart, Term, BracketClose, ArrowEnd, EOF)
}

func TestScanIncomingHop(t *testing.T) {
	toks := scanAll(t, "<-[knows]-")
	assertKinds(t, toks, ArrowInStart, Term, BracketClose, Dash, EOF)
}

func TestScanBidirectionalHop(t *testing.T) {
	toks := scanAll(t, "<-[knows]->")
	assertKinds(t, toks, ArrowInStart, Term, BracketClose, ArrowEnd, EOF)
}

func TestScanIncomingOpenerRequiresBracket(t *testing.T) {
	_, err := New("<-knows").Tokens()
	if err == nil {
		t.Fatal("expected an error for '<-' not followed by '['")
	}
}

func TestScanWildcardRelation(t *testing.T) {
	toks := scanAll(t, "-[*]->")
	assertKinds(t, toks, ArrowOutStart, Wildcard, BracketClose, ArrowEnd, EOF)
}

func TestScanDepthRange(t *testing.T) {
	toks := scanAll(t, "-[knows]{1,3}->")
	assertKinds(t, toks, ArrowOutStart, Term, BracketClose, BraceOpen, Integer, Comma, Integer, BraceClose, ArrowEnd, EOF)
}

func TestScanCommaSeparatedRelations(t *testing.T) {
	toks := scanAll(t, "-[knows,founded]->")
	assertKinds(t, toks, ArrowOutStart, Term, Comma, Term, BracketClose, ArrowEnd, EOF)
}

func TestScanFullQuery(t *testing.T) {
	toks := scanAll(t, `"jane doe" -[knows]{,3}-> type:company~"biotech startup"`)
	assertKinds(t, toks,
		QuotedString,
		ArrowOutStart, Term, BracketClose, BraceOpen, Comma, Integer, BraceClose, ArrowEnd,
		TypeFilter, Tilde, QuotedString,
		EOF,
	)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, err := New("$").Tokens()
	if err == nil {
		t.Fatal("expected an error for an unexpected character")
	}
}

func TestTokenPositionsTrackByteOffsets(t *testing.T) {
	toks := scanAll(t, `@a -[k]->`)
	if toks[0].Position != 0 {
		t.Errorf("got position %d, want 0", toks[0].Position)
	}
	if toks[1].Position != 3 {
		t.Errorf("got position %d, want 3", toks[1].Position)
	}
}
