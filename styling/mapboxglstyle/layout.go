package mapboxglstyle

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
)

const (
	VisibilityVisible = "visible"
	VisibilityNone    = "none"
)

const defaultTextSize = 16

type Layout struct {
	Visibility            string                       `json:"visibility"`
	LineCap               string                       `json:"line-cap"`
	LineJoin              string                       `json:"line-join"`
	TextField             json.RawMessage              `json:"text-field"` // "{name}" or ["get", "name"]
	TextFont              []string                     `json:"text-font"`
	TextSize              *NumberOrFunctionWrapperType `json:"text-size"` // float64 or {"base": 1.4, "stops": [[10, 8], [20, 14]]}
	SymbolPlacement       string                       `json:"symbol-placement"`
	TextLetterSpacing     float64                      `json:"text-letter-spacing"`
	TextRotationAlignment string                       `json:"text-rotation-alignment"`
	TextTransform         string                       `json:"text-transform"`
	IconSize              float64                      `json:"icon-size"`
	TextAnchor            string                       `json:"text-anchor"`
	TextMaxWidth          float64                      `json:"text-max-width"`
	TextOffset            []float64                    `json:"text-offset"` // ems
	SymbolSpacing         float64                      `json:"symbol-spacing"`
	IconImage             string                       `json:"icon-image"`
	TextPadding           float64                      `json:"text-padding"`
}

// textExpression reads the text-field. A nil expression means the layer has no text.
func (l *Layout) textExpression() (*styling.TextExpression, errorsx.Error) {
	if len(l.TextField) == 0 {
		return nil, nil
	}

	var template string
	if err := json.Unmarshal(l.TextField, &template); err == nil {
		if template == "" {
			return nil, nil
		}
		return styling.ParseFieldTemplate(template), nil
	}

	var expression []interface{}
	err := json.Unmarshal(l.TextField, &expression)
	if err != nil {
		return nil, errorsx.Wrap(err, "text-field", string(l.TextField))
	}

	if len(expression) == 2 && expression[0] == "get" {
		if field, ok := expression[1].(string); ok {
			return styling.FieldText(field), nil
		}
	}

	return nil, errorsx.Errorf("unsupported text-field expression: %s", l.TextField)
}

func (l *Layout) textSizeAt(zoom float64) float64 {
	if l.TextSize == nil {
		return defaultTextSize
	}
	return l.TextSize.GetValueAtZoomLevel(zoom)
}

func (l *Layout) textFace() string {
	if len(l.TextFont) == 0 {
		return ""
	}
	return l.TextFont[0]
}

func (l *Layout) placement() styling.TextPlacement {
	if l.SymbolPlacement == "line" || l.SymbolPlacement == "line-center" {
		return styling.TextPlacementLine
	}
	return styling.TextPlacementPoint
}
