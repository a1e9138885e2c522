package styling

import (
	"fmt"
	"strconv"
	"strings"
)

type GeometryType string

const (
	GeometryTypeUnknown    GeometryType = "Unknown"
	GeometryTypePoint      GeometryType = "Point"
	GeometryTypeLineString GeometryType = "LineString"
	GeometryTypePolygon    GeometryType = "Polygon"
)

// FeatureAttributes is what filters and text expressions are evaluated against
type FeatureAttributes interface {
	Attribute(key string) (interface{}, bool)
	GeometryType() GeometryType
}

type Filter interface {
	Matches(feature FeatureAttributes) bool
	String() string
}

type ComparatorOperator string

const (
	ComparatorEquals               ComparatorOperator = "="
	ComparatorNotEqual             ComparatorOperator = "!="
	ComparatorLessThan             ComparatorOperator = "<"
	ComparatorLessThanOrEqualTo    ComparatorOperator = "<="
	ComparatorGreaterThan          ComparatorOperator = ">"
	ComparatorGreaterThanOrEqualTo ComparatorOperator = ">="
)

type logicalOperator string

const (
	logicalOperatorOr  logicalOperator = "or"
	logicalOperatorAnd logicalOperator = "and"
)

type comparisonFilter struct {
	Key      string
	Operator ComparatorOperator
	Value    interface{}
}

// Compare matches features whose attribute compares with the value.
// A missing attribute is null, which is only equal to nil.
func Compare(key string, operator ComparatorOperator, value interface{}) Filter {
	return &comparisonFilter{key, operator, normaliseValue(value)}
}

func (f *comparisonFilter) Matches(feature FeatureAttributes) bool {
	attr, _ := feature.Attribute(f.Key)
	return compareValues(normaliseValue(attr), f.Operator, f.Value)
}

func (f *comparisonFilter) String() string {
	return fmt.Sprintf("[%s] %s %s", f.Key, f.Operator, literalString(f.Value))
}

type geometryTypeFilter struct {
	Operator     ComparatorOperator
	GeometryType GeometryType
}

func GeometryTypeIs(geometryType GeometryType) Filter {
	return &geometryTypeFilter{ComparatorEquals, geometryType}
}

func GeometryTypeIsNot(geometryType GeometryType) Filter {
	return &geometryTypeFilter{ComparatorNotEqual, geometryType}
}

func (f *geometryTypeFilter) Matches(feature FeatureAttributes) bool {
	isType := feature.GeometryType() == f.GeometryType
	if f.Operator == ComparatorNotEqual {
		return !isType
	}
	return isType
}

func (f *geometryTypeFilter) String() string {
	return fmt.Sprintf("[mapnik::geometry_type] %s %s", f.Operator, strings.ToLower(string(f.GeometryType)))
}

type inFilter struct {
	Key    string
	Values []interface{}
	Negate bool
}

func In(key string, values ...interface{}) Filter {
	return newInFilter(key, values, false)
}

func NotIn(key string, values ...interface{}) Filter {
	return newInFilter(key, values, true)
}

func newInFilter(key string, values []interface{}, negate bool) Filter {
	normalised := make([]interface{}, len(values))
	for i, v := range values {
		normalised[i] = normaliseValue(v)
	}
	return &inFilter{key, normalised, negate}
}

func (f *inFilter) Matches(feature FeatureAttributes) bool {
	attr, _ := feature.Attribute(f.Key)
	attr = normaliseValue(attr)
	for _, v := range f.Values {
		if compareValues(attr, ComparatorEquals, v) {
			return !f.Negate
		}
	}
	return f.Negate
}

func (f *inFilter) String() string {
	var values []string
	for _, v := range f.Values {
		values = append(values, literalString(v))
	}
	op := "in"
	if f.Negate {
		op = "not in"
	}
	return fmt.Sprintf("[%s] %s (%s)", f.Key, op, strings.Join(values, ", "))
}

type hasFilter struct {
	Key    string
	Negate bool
}

func Has(key string) Filter {
	return &hasFilter{Key: key}
}

func NotHas(key string) Filter {
	return &hasFilter{Key: key, Negate: true}
}

func (f *hasFilter) Matches(feature FeatureAttributes) bool {
	_, ok := feature.Attribute(f.Key)
	return ok != f.Negate
}

func (f *hasFilter) String() string {
	if f.Negate {
		return fmt.Sprintf("not has [%s]", f.Key)
	}
	return fmt.Sprintf("has [%s]", f.Key)
}

// truthyFilter matches features where the attribute is set and not false, zero or empty
type truthyFilter struct {
	Key string
}

func (f *truthyFilter) Matches(feature FeatureAttributes) bool {
	attr, ok := feature.Attribute(f.Key)
	if !ok {
		return false
	}
	switch v := normaliseValue(attr).(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return true
}

func (f *truthyFilter) String() string {
	return fmt.Sprintf("[%s]", f.Key)
}

type logicalFilter struct {
	Operator logicalOperator
	Filters  []Filter
}

func And(filters ...Filter) Filter {
	return &logicalFilter{logicalOperatorAnd, filters}
}

func Or(filters ...Filter) Filter {
	return &logicalFilter{logicalOperatorOr, filters}
}

func (f *logicalFilter) Matches(feature FeatureAttributes) bool {
	for _, sub := range f.Filters {
		matched := sub.Matches(feature)
		if f.Operator == logicalOperatorOr && matched {
			return true
		}
		if f.Operator == logicalOperatorAnd && !matched {
			return false
		}
	}
	return f.Operator == logicalOperatorAnd
}

func (f *logicalFilter) String() string {
	var parts []string
	for _, sub := range f.Filters {
		parts = append(parts, "("+sub.String()+")")
	}
	return strings.Join(parts, " "+string(f.Operator)+" ")
}

type notFilter struct {
	Filter Filter
}

func Not(filter Filter) Filter {
	return &notFilter{filter}
}

func (f *notFilter) Matches(feature FeatureAttributes) bool {
	return !f.Filter.Matches(feature)
}

func (f *notFilter) String() string {
	return "not (" + f.Filter.String() + ")"
}

type constFilter bool

func (f constFilter) Matches(feature FeatureAttributes) bool {
	return bool(f)
}

func (f constFilter) String() string {
	return strconv.FormatBool(bool(f))
}

// normaliseValue turns all numeric types into float64, so values decoded from different sources compare equal
func normaliseValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

func compareValues(attr interface{}, operator ComparatorOperator, value interface{}) bool {
	cmp, comparable := orderValues(attr, value)

	switch operator {
	case ComparatorEquals:
		return comparable && cmp == 0
	case ComparatorNotEqual:
		return !comparable || cmp != 0
	}

	if !comparable || attr == nil || value == nil {
		return false
	}

	switch operator {
	case ComparatorLessThan:
		return cmp < 0
	case ComparatorLessThanOrEqualTo:
		return cmp <= 0
	case ComparatorGreaterThan:
		return cmp > 0
	case ComparatorGreaterThanOrEqualTo:
		return cmp >= 0
	}
	return false
}

// orderValues returns -1, 0 or 1, and whether the values could be compared at all
func orderValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			// numeric strings compare with numbers, as data sources are not consistent with types
			s, isString := b.(string)
			if !isString {
				return 0, false
			}
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, false
			}
			bv = parsed
		}
		return compareFloats(av, bv), true
	case string:
		switch bv := b.(type) {
		case string:
			return strings.Compare(av, bv), true
		case float64:
			parsed, err := strconv.ParseFloat(av, 64)
			if err != nil {
				return 0, false
			}
			return compareFloats(parsed, bv), true
		}
		return 0, false
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}

	return 0, false
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func literalString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "\\'") + "'"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
