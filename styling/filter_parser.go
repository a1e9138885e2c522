package styling

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jamesrr39/goutil/errorsx"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenField
	tokenString
	tokenNumber
	tokenIdent
	tokenOperator
	tokenOpenParen
	tokenCloseParen
	tokenComma
	tokenPlus
)

type token struct {
	Type  tokenType
	Value string
	Pos   int
}

const geometryTypeField = "mapnik::geometry_type"

func tokenize(expr string) ([]token, errorsx.Error) {
	var tokens []token
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '[':
			end := indexRune(runes, i+1, ']')
			if end == -1 {
				return nil, errorsx.Errorf("unterminated field at position %d", i)
			}
			tokens = append(tokens, token{tokenField, strings.TrimSpace(string(runes[i+1 : end])), i})
			i = end + 1
		case r == '\'' || r == '"':
			var sb strings.Builder
			j := i + 1
			for ; j < len(runes) && runes[j] != r; j++ {
				if runes[j] == '\\' && j+1 < len(runes) {
					j++
				}
				sb.WriteRune(runes[j])
			}
			if j >= len(runes) {
				return nil, errorsx.Errorf("unterminated string at position %d", i)
			}
			tokens = append(tokens, token{tokenString, sb.String(), i})
			i = j + 1
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && (unicode.IsDigit(runes[i+1]) || runes[i+1] == '.')) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == 'e' || runes[j] == 'E') {
				j++
			}
			tokens = append(tokens, token{tokenNumber, string(runes[i:j]), i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == ':') {
				j++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[i:j]), i})
			i = j
		case r == '(':
			tokens = append(tokens, token{tokenOpenParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenCloseParen, ")", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokenComma, ",", i})
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+", i})
			i++
		case strings.ContainsRune("=!<>&|", r):
			j := i + 1
			for j < len(runes) && strings.ContainsRune("=!<>&|", runes[j]) {
				j++
			}
			tokens = append(tokens, token{tokenOperator, string(runes[i:j]), i})
			i = j
		default:
			return nil, errorsx.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	return append(tokens, token{tokenEOF, "", len(runes)}), nil
}

func indexRune(runes []rune, from int, needle rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == needle {
			return i
		}
	}
	return -1
}

type filterParser struct {
	tokens []token
	pos    int
}

// ParseFilter parses a filter expression, such as
//
//	[class] = 'primary' and ([rank] >= 3 or not [oneway])
//	[mapnik::geometry_type] = polygon
//
// An empty expression matches everything.
func ParseFilter(expr string) (Filter, errorsx.Error) {
	if strings.TrimSpace(expr) == "" {
		return constFilter(true), nil
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", expr)
	}

	p := &filterParser{tokens: tokens}
	filter, err := p.parseOr()
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", expr)
	}

	if p.peek().Type != tokenEOF {
		return nil, errorsx.Errorf("unexpected %q at position %d in expression %q", p.peek().Value, p.peek().Pos, expr)
	}

	return filter, nil
}

func (p *filterParser) peek() token {
	return p.tokens[p.pos]
}

func (p *filterParser) next() token {
	t := p.tokens[p.pos]
	if t.Type != tokenEOF {
		p.pos++
	}
	return t
}

func (p *filterParser) isKeyword(keyword string) bool {
	t := p.peek()
	return t.Type == tokenIdent && strings.EqualFold(t.Value, keyword)
}

func (p *filterParser) isOperator(ops ...string) bool {
	t := p.peek()
	if t.Type != tokenOperator {
		return false
	}
	for _, op := range ops {
		if t.Value == op {
			return true
		}
	}
	return false
}

func (p *filterParser) parseOr() (Filter, errorsx.Error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	filters := []Filter{first}
	for p.isKeyword("or") || p.isOperator("||") {
		p.next()
		f, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	if len(filters) == 1 {
		return first, nil
	}
	return Or(filters...), nil
}

func (p *filterParser) parseAnd() (Filter, errorsx.Error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	filters := []Filter{first}
	for p.isKeyword("and") || p.isOperator("&&") {
		p.next()
		f, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	if len(filters) == 1 {
		return first, nil
	}
	return And(filters...), nil
}

func (p *filterParser) parseNot() (Filter, errorsx.Error) {
	if p.isKeyword("not") || p.isOperator("!") {
		p.next()
		f, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	}

	return p.parsePrimary()
}

func (p *filterParser) parsePrimary() (Filter, errorsx.Error) {
	t := p.peek()
	switch {
	case t.Type == tokenOpenParen:
		p.next()
		f, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().Type != tokenCloseParen {
			return nil, errorsx.Errorf("missing closing bracket for bracket at position %d", t.Pos)
		}
		return f, nil
	case t.Type == tokenIdent && (strings.EqualFold(t.Value, "true") || strings.EqualFold(t.Value, "false")):
		p.next()
		return constFilter(strings.EqualFold(t.Value, "true")), nil
	case t.Type == tokenField:
		return p.parseComparison()
	}

	return nil, errorsx.Errorf("unexpected %q at position %d", t.Value, t.Pos)
}

func (p *filterParser) parseComparison() (Filter, errorsx.Error) {
	field := p.next()

	if p.isKeyword("in") || (p.isKeyword("not") && p.tokens[p.pos+1].Type == tokenIdent && strings.EqualFold(p.tokens[p.pos+1].Value, "in")) {
		negate := p.isKeyword("not")
		if negate {
			p.next()
		}
		p.next()
		values, err := p.parseValueList()
		if err != nil {
			return nil, err
		}
		return newInFilter(field.Value, values, negate), nil
	}

	if p.peek().Type != tokenOperator || p.isOperator("&&", "||", "!") {
		// a bare field tests whether the attribute is set
		return &truthyFilter{field.Value}, nil
	}

	opToken := p.next()
	operator, err := parseComparator(opToken)
	if err != nil {
		return nil, err
	}

	valueToken := p.next()

	if field.Value == geometryTypeField {
		geometryType, err := parseGeometryType(valueToken)
		if err != nil {
			return nil, err
		}
		switch operator {
		case ComparatorEquals:
			return GeometryTypeIs(geometryType), nil
		case ComparatorNotEqual:
			return GeometryTypeIsNot(geometryType), nil
		default:
			return nil, errorsx.Errorf("operator %q not supported for geometry type", opToken.Value)
		}
	}

	value, err := parseLiteral(valueToken)
	if err != nil {
		return nil, err
	}

	return Compare(field.Value, operator, value), nil
}

func (p *filterParser) parseValueList() ([]interface{}, errorsx.Error) {
	if p.next().Type != tokenOpenParen {
		return nil, errorsx.Errorf("expected ( after in")
	}

	var values []interface{}
	for {
		value, err := parseLiteral(p.next())
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		switch p.next().Type {
		case tokenComma:
			continue
		case tokenCloseParen:
			return values, nil
		default:
			return nil, errorsx.Errorf("expected , or ) in value list")
		}
	}
}

func parseComparator(t token) (ComparatorOperator, errorsx.Error) {
	switch t.Value {
	case "=", "==":
		return ComparatorEquals, nil
	case "!=", "<>":
		return ComparatorNotEqual, nil
	case "<":
		return ComparatorLessThan, nil
	case "<=":
		return ComparatorLessThanOrEqualTo, nil
	case ">":
		return ComparatorGreaterThan, nil
	case ">=":
		return ComparatorGreaterThanOrEqualTo, nil
	}
	return "", errorsx.Errorf("unknown operator %q at position %d", t.Value, t.Pos)
}

func parseLiteral(t token) (interface{}, errorsx.Error) {
	switch t.Type {
	case tokenString:
		return t.Value, nil
	case tokenNumber:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, errorsx.Wrap(err, "position", t.Pos)
		}
		return f, nil
	case tokenIdent:
		switch strings.ToLower(t.Value) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		// bare words are strings
		return t.Value, nil
	}
	return nil, errorsx.Errorf("expected a value at position %d, but got %q", t.Pos, t.Value)
}

func parseGeometryType(t token) (GeometryType, errorsx.Error) {
	switch strings.ToLower(t.Value) {
	case "point", "1":
		return GeometryTypePoint, nil
	case "linestring", "2":
		return GeometryTypeLineString, nil
	case "polygon", "3":
		return GeometryTypePolygon, nil
	}
	return "", errorsx.Errorf("unknown geometry type %q", t.Value)
}
