package styling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

type textPart struct {
	Field   string
	Literal string
}

// TextExpression builds label text from feature attributes and literals
type TextExpression struct {
	parts []textPart
}

func FieldText(field string) *TextExpression {
	return &TextExpression{[]textPart{{Field: field}}}
}

// ParseTextExpression parses expressions such as [name] + ' (' + [ref] + ')'
func ParseTextExpression(expr string) (*TextExpression, errorsx.Error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", expr)
	}

	te := new(TextExpression)
	expectPart := true
	for _, t := range tokens {
		if t.Type == tokenEOF {
			break
		}

		if !expectPart {
			if t.Type != tokenPlus {
				return nil, errorsx.Errorf("expected + at position %d in text expression %q", t.Pos, expr)
			}
			expectPart = true
			continue
		}

		switch t.Type {
		case tokenField:
			te.parts = append(te.parts, textPart{Field: t.Value})
		case tokenString, tokenNumber, tokenIdent:
			te.parts = append(te.parts, textPart{Literal: t.Value})
		default:
			return nil, errorsx.Errorf("unexpected %q at position %d in text expression %q", t.Value, t.Pos, expr)
		}
		expectPart = false
	}

	return te, nil
}

// ParseFieldTemplate parses templates such as "{name} {ref}", where braces wrap attribute names
func ParseFieldTemplate(template string) *TextExpression {
	te := new(TextExpression)
	for len(template) > 0 {
		start := strings.Index(template, "{")
		end := strings.Index(template, "}")
		if start == -1 || end < start {
			te.parts = append(te.parts, textPart{Literal: template})
			break
		}
		if start > 0 {
			te.parts = append(te.parts, textPart{Literal: template[:start]})
		}
		te.parts = append(te.parts, textPart{Field: template[start+1 : end]})
		template = template[end+1:]
	}
	return te
}

func (te *TextExpression) Evaluate(feature FeatureAttributes) string {
	var sb strings.Builder
	for _, part := range te.parts {
		if part.Field == "" {
			sb.WriteString(part.Literal)
			continue
		}
		attr, ok := feature.Attribute(part.Field)
		if !ok || attr == nil {
			continue
		}
		sb.WriteString(attributeString(attr))
	}
	return sb.String()
}

func (te *TextExpression) String() string {
	var parts []string
	for _, part := range te.parts {
		if part.Field != "" {
			parts = append(parts, "["+part.Field+"]")
		} else {
			parts = append(parts, literalString(part.Literal))
		}
	}
	return strings.Join(parts, " + ")
}

func attributeString(attr interface{}) string {
	switch v := normaliseValue(attr).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", attr)
}
