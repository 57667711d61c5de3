package parse

import (
	"strconv"
	"strings"

	"github.com/arkivegraph/pathql/internal/lex"
)

// Parser is a recursive-descent parser over a lexer's token stream. It is
// not safe for concurrent use.
type Parser struct {
	lx  *lex.Lexer
	tok lex.Token
}

// Parse lexes and parses a full query string.
func Parse(input string) (*Query, error) {
	p := &Parser{lx: lex.New(input)}
	if err := p.advance(); err != nil {
		return nil, toParseErr(err)
	}

	entry, err := p.parseEntry()
	if err != nil {
		return nil, err
	}

	q := &Query{Entry: entry}

	if p.tok.Kind != lex.ArrowOutStart && p.tok.Kind != lex.ArrowInStart && p.tok.Kind != lex.EOF {
		filter, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		q.EntryFilter = filter
	}

	for p.tok.Kind == lex.ArrowOutStart || p.tok.Kind == lex.ArrowInStart {
		hop, err := p.parseHop()
		if err != nil {
			return nil, err
		}
		q.Hops = append(q.Hops, hop)
	}

	if p.tok.Kind != lex.EOF {
		return nil, Error{Position: p.tok.Position, Message: "unexpected trailing input " + p.tok.String()}
	}

	return q, nil
}

func toParseErr(err error) error {
	if lerr, ok := err.(lex.Error); ok {
		return Error{Position: lerr.Position, Message: lerr.Message}
	}
	return err
}

func (p *Parser) advance() error {
	tok, err := p.lx.Scan()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) expect(k lex.Kind) (lex.Token, error) {
	if p.tok.Kind != k {
		return lex.Token{}, Error{Position: p.tok.Position, Message: "expected " + k.String() + ", got " + p.tok.Kind.String()}
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return lex.Token{}, toParseErr(err)
	}
	return tok, nil
}

func splitTypes(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseEntry implements: entry := quoted | at_id | type_list ('~' quoted)?
func (p *Parser) parseEntry() (EntryPoint, error) {
	switch p.tok.Kind {
	case lex.QuotedString:
		tok, err := p.expect(lex.QuotedString)
		if err != nil {
			return EntryPoint{}, err
		}
		return EntryPoint{Kind: EntrySemanticText, Text: tok.Value}, nil

	case lex.AtID:
		tok, err := p.expect(lex.AtID)
		if err != nil {
			return EntryPoint{}, err
		}
		return EntryPoint{Kind: EntryExactID, ID: tok.Value}, nil

	case lex.TypeFilter:
		tok, err := p.expect(lex.TypeFilter)
		if err != nil {
			return EntryPoint{}, err
		}
		types := splitTypes(tok.Value)
		if p.tok.Kind != lex.Tilde {
			return EntryPoint{Kind: EntryTypeOnly, Types: types}, nil
		}
		if _, err := p.expect(lex.Tilde); err != nil {
			return EntryPoint{}, err
		}
		text, err := p.expect(lex.QuotedString)
		if err != nil {
			return EntryPoint{}, err
		}
		return EntryPoint{Kind: EntryTypePlusSemantic, Types: types, Text: text.Value}, nil

	default:
		return EntryPoint{}, Error{Position: p.tok.Position, Message: "expected an entry point, got " + p.tok.Kind.String()}
	}
}

// parseFilter implements: filter := type_list ('~' quoted)? | at_id | quoted
func (p *Parser) parseFilter() (*Filter, error) {
	switch p.tok.Kind {
	case lex.QuotedString:
		tok, err := p.expect(lex.QuotedString)
		if err != nil {
			return nil, err
		}
		return &Filter{Kind: FilterSemanticText, Text: tok.Value}, nil

	case lex.AtID:
		tok, err := p.expect(lex.AtID)
		if err != nil {
			return nil, err
		}
		return &Filter{Kind: FilterExactID, ID: tok.Value}, nil

	case lex.TypeFilter:
		tok, err := p.expect(lex.TypeFilter)
		if err != nil {
			return nil, err
		}
		types := splitTypes(tok.Value)
		if p.tok.Kind != lex.Tilde {
			return &Filter{Kind: FilterTypeSet, Types: types}, nil
		}
		if _, err := p.expect(lex.Tilde); err != nil {
			return nil, err
		}
		text, err := p.expect(lex.QuotedString)
		if err != nil {
			return nil, err
		}
		return &Filter{Kind: FilterTypeSetPlusSemantic, Types: types, Text: text.Value}, nil

	default:
		return nil, Error{Position: p.tok.Position, Message: "expected a filter, got " + p.tok.Kind.String()}
	}
}

// parseHop implements: hop := ('-[' | '<-[') relation ']' depth? arrow_end filter?
func (p *Parser) parseHop() (Hop, error) {
	opener := p.tok.Kind
	if _, err := p.expect(opener); err != nil {
		return Hop{}, err
	}

	relation, err := p.parseRelation()
	if err != nil {
		return Hop{}, err
	}

	if _, err := p.expect(lex.BracketClose); err != nil {
		return Hop{}, err
	}

	depth := DefaultDepth
	hasDepth := false
	if p.tok.Kind == lex.BraceOpen {
		depth, err = p.parseDepth()
		if err != nil {
			return Hop{}, err
		}
		hasDepth = true
	}

	direction, err := p.parseArrowEnd(opener)
	if err != nil {
		return Hop{}, err
	}

	hop := Hop{Direction: direction, Relation: relation, Depth: depth, HasDepth: hasDepth}

	if p.tok.Kind == lex.TypeFilter || p.tok.Kind == lex.AtID || p.tok.Kind == lex.QuotedString {
		filter, err := p.parseFilter()
		if err != nil {
			return Hop{}, err
		}
		hop.Filter = filter
	}

	return hop, nil
}

// parseRelation implements: relation := '*' | term (',' term)*
func (p *Parser) parseRelation() (RelationMatch, error) {
	if p.tok.Kind == lex.Wildcard {
		if _, err := p.expect(lex.Wildcard); err != nil {
			return RelationMatch{}, err
		}
		return RelationMatch{Wildcard: true}, nil
	}

	first, err := p.expect(lex.Term)
	if err != nil {
		return RelationMatch{}, Error{Position: p.tok.Position, Message: "expected '*' or a relation term"}
	}
	terms := []string{first.Value}

	for p.tok.Kind == lex.Comma {
		if _, err := p.expect(lex.Comma); err != nil {
			return RelationMatch{}, err
		}
		term, err := p.expect(lex.Term)
		if err != nil {
			return RelationMatch{}, err
		}
		terms = append(terms, term.Value)
	}

	return RelationMatch{Terms: terms}, nil
}

func (p *Parser) parseInt() (int, error) {
	tok, err := p.expect(lex.Integer)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Value)
	if convErr != nil {
		return 0, Error{Position: tok.Position, Message: "malformed integer " + tok.Value}
	}
	return n, nil
}

// parseDepth implements:
// depth := '{' ( int | ',' int | int ',' | int ',' int | int ) '}'
func (p *Parser) parseDepth() (DepthRange, error) {
	if _, err := p.expect(lex.BraceOpen); err != nil {
		return DepthRange{}, err
	}

	if p.tok.Kind == lex.Comma {
		if _, err := p.expect(lex.Comma); err != nil {
			return DepthRange{}, err
		}
		max, err := p.parseInt()
		if err != nil {
			return DepthRange{}, err
		}
		if _, err := p.expect(lex.BraceClose); err != nil {
			return DepthRange{}, err
		}
		return DepthRange{Min: 1, Max: max}, nil
	}

	min, err := p.parseInt()
	if err != nil {
		return DepthRange{}, err
	}

	switch p.tok.Kind {
	case lex.BraceClose:
		if _, err := p.expect(lex.BraceClose); err != nil {
			return DepthRange{}, err
		}
		return DepthRange{Min: min, Max: min}, nil

	case lex.Comma:
		if _, err := p.expect(lex.Comma); err != nil {
			return DepthRange{}, err
		}
		if p.tok.Kind == lex.BraceClose {
			if _, err := p.expect(lex.BraceClose); err != nil {
				return DepthRange{}, err
			}
			return DepthRange{Min: min, Max: UnboundedDepth}, nil
		}
		max, err := p.parseInt()
		if err != nil {
			return DepthRange{}, err
		}
		if _, err := p.expect(lex.BraceClose); err != nil {
			return DepthRange{}, err
		}
		return DepthRange{Min: min, Max: max}, nil

	default:
		return DepthRange{}, Error{Position: p.tok.Position, Message: "expected ',' or '}' in depth range"}
	}
}

// parseArrowEnd resolves direction from the opener and the closing arrow
// fragment, per spec §4.2's bidirectional-hop rule.
func (p *Parser) parseArrowEnd(opener lex.Kind) (Direction, error) {
	switch p.tok.Kind {
	case lex.ArrowEnd:
		if _, err := p.expect(lex.ArrowEnd); err != nil {
			return 0, err
		}
		if opener == lex.ArrowInStart {
			return DirBidirectional, nil
		}
		return DirOutgoing, nil

	case lex.Dash:
		if _, err := p.expect(lex.Dash); err != nil {
			return 0, err
		}
		if opener == lex.ArrowInStart {
			return DirIncoming, nil
		}
		return 0, Error{Position: p.tok.Position, Message: "outgoing hop must close with '->'"}

	default:
		return 0, Error{Position: p.tok.Position, Message: "expected '->' or '-' to close hop"}
	}
}
