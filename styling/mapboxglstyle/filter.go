package mapboxglstyle

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/vtrender/styling"
)

const (
	FilterOperatorEquals             = "=="
	FilterOperatorNotEqual           = "!="
	FilterOperatorLessThan           = "<"
	FilterOperatorLessThanOrEqual    = "<="
	FilterOperatorGreaterThan        = ">"
	FilterOperatorGreaterThanOrEqual = ">="
	FilterOperatorAny                = "any"
	FilterOperatorAll                = "all"
	FilterOperatorNone               = "none"
	FilterOperatorIn                 = "in"
	FilterOperatorNotIn              = "!in"
	FilterOperatorHas                = "has"
	FilterOperatorNotHas             = "!has"
)

const (
	FilterThingType = "$type"
	FilterThingID   = "$id"
)

/*
	"filter": [
		"all",
		["==", "$type", "Polygon"],
		["in", "class", "residential", "suburb", "neighbourhood"]
	]

	"filter": ["==", "$type", "Point"],
*/

// Filter is the decoded JSON filter array
type Filter interface{}

var comparisonOperators = map[string]styling.ComparatorOperator{
	FilterOperatorEquals:             styling.ComparatorEquals,
	FilterOperatorNotEqual:           styling.ComparatorNotEqual,
	FilterOperatorLessThan:           styling.ComparatorLessThan,
	FilterOperatorLessThanOrEqual:    styling.ComparatorLessThanOrEqualTo,
	FilterOperatorGreaterThan:        styling.ComparatorGreaterThan,
	FilterOperatorGreaterThanOrEqual: styling.ComparatorGreaterThanOrEqualTo,
}

// toStylingFilter converts a filter array into a styling filter. A nil filter converts to nil, which matches everything.
func toStylingFilter(filter Filter) (styling.Filter, errorsx.Error) {
	if filter == nil {
		return nil, nil
	}

	base, ok := filter.([]interface{})
	if !ok || len(base) == 0 {
		return nil, errorsx.Errorf("filter is not a non-empty array: %v", filter)
	}

	operator, ok := base[0].(string)
	if !ok {
		return nil, errorsx.Errorf("filter operator is not a string: %v", base[0])
	}

	switch operator {
	case FilterOperatorAll, FilterOperatorAny, FilterOperatorNone:
		var subFilters []styling.Filter
		for _, subFilterComponent := range base[1:] {
			subFilter, err := toStylingFilter(subFilterComponent)
			if err != nil {
				return nil, err
			}
			if subFilter != nil {
				subFilters = append(subFilters, subFilter)
			}
		}
		switch operator {
		case FilterOperatorAll:
			return styling.And(subFilters...), nil
		case FilterOperatorAny:
			return styling.Or(subFilters...), nil
		default:
			return styling.Not(styling.Or(subFilters...)), nil
		}
	case FilterOperatorHas, FilterOperatorNotHas:
		if len(base) != 2 {
			return nil, errorsx.Errorf("%q filter expects 1 argument, got %d", operator, len(base)-1)
		}
		key, err := filterKey(base[1])
		if err != nil {
			return nil, err
		}
		if operator == FilterOperatorHas {
			return styling.Has(key), nil
		}
		return styling.NotHas(key), nil
	case FilterOperatorIn, FilterOperatorNotIn:
		if len(base) < 2 {
			return nil, errorsx.Errorf("%q filter expects a key", operator)
		}
		key, err := filterKey(base[1])
		if err != nil {
			return nil, err
		}
		if key == FilterThingType {
			var typeFilters []styling.Filter
			for _, value := range base[2:] {
				typeFilters = append(typeFilters, styling.GeometryTypeIs(styling.GeometryType(fmt.Sprint(value))))
			}
			if operator == FilterOperatorIn {
				return styling.Or(typeFilters...), nil
			}
			return styling.Not(styling.Or(typeFilters...)), nil
		}
		if operator == FilterOperatorIn {
			return styling.In(key, base[2:]...), nil
		}
		return styling.NotIn(key, base[2:]...), nil
	}

	comparator, ok := comparisonOperators[operator]
	if !ok {
		return nil, errorsx.Errorf("filter operator not supported: %q", operator)
	}

	if len(base) != 3 {
		return nil, errorsx.Errorf("%q filter expects 2 arguments, got %d", operator, len(base)-1)
	}

	key, err := filterKey(base[1])
	if err != nil {
		return nil, err
	}

	if key == FilterThingType {
		geometryType := styling.GeometryType(fmt.Sprint(base[2]))
		switch operator {
		case FilterOperatorEquals:
			return styling.GeometryTypeIs(geometryType), nil
		case FilterOperatorNotEqual:
			return styling.GeometryTypeIsNot(geometryType), nil
		default:
			return nil, errorsx.Errorf("operator %q cannot be used with %q", operator, FilterThingType)
		}
	}

	return styling.Compare(key, comparator, base[2]), nil
}

// filterKey reads a property key, either as a plain string or a ["get", key] expression
func filterKey(v interface{}) (string, errorsx.Error) {
	switch key := v.(type) {
	case string:
		if key == FilterThingID {
			return "", errorsx.Errorf("filtering on %q is not supported", FilterThingID)
		}
		return key, nil
	case []interface{}:
		if len(key) == 2 && key[0] == "get" {
			if name, ok := key[1].(string); ok {
				return name, nil
			}
		}
		if len(key) == 1 && key[0] == "geometry-type" {
			return FilterThingType, nil
		}
	}
	return "", errorsx.Errorf("unsupported filter key: %v", v)
}
