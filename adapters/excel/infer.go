package excel

import (
	"strconv"
	"strings"
	"time"

	"timeprof/domain/frame"
	"timeprof/domain/schema"
)

var (
	dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

	datetimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		// excelize renders datetime cells with this layout
		"01-02-06 15:04",
		"1/2/06 15:04",
	}
)

// inferColumn picks the narrowest element type every non-empty value of
// the column parses as, in order: integer, float, boolean, date, datetime,
// string. Empty cells become missing values.
func inferColumn(name string, raw []string) frame.Column {
	elemType := inferType(raw)
	values := make([]any, len(raw))
	for i, s := range raw {
		if s == "" {
			continue
		}
		values[i] = parseValue(s, elemType)
	}
	return frame.Column{Name: name, Type: elemType, Values: values}
}

func inferType(raw []string) schema.ElementType {
	seen := false
	isInt, isFloat, isBool, isDate, isDatetime := true, true, true, true, true
	for _, s := range raw {
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			_, err := strconv.ParseInt(s, 10, 64)
			isInt = err == nil
		}
		if isFloat {
			_, err := strconv.ParseFloat(s, 64)
			isFloat = err == nil
		}
		if isBool {
			isBool = parseableBool(s)
		}
		if isDate {
			isDate = parseableAny(s, dateLayouts)
		}
		if isDatetime {
			isDatetime = parseableAny(s, datetimeLayouts)
		}
		if !isInt && !isFloat && !isBool && !isDate && !isDatetime {
			return schema.String
		}
	}
	switch {
	case !seen:
		return schema.String
	case isInt:
		return schema.Integer
	case isFloat:
		return schema.Float
	case isBool:
		return schema.Boolean
	case isDate:
		return schema.Date
	case isDatetime:
		return schema.Datetime
	default:
		return schema.String
	}
}

func parseValue(s string, elemType schema.ElementType) any {
	switch elemType {
	case schema.Integer:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case schema.Float:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case schema.Boolean:
		switch strings.ToLower(s) {
		case "true", "yes", "1":
			return true
		default:
			return false
		}
	case schema.Date:
		return parseAny(s, dateLayouts)
	case schema.Datetime:
		return parseAny(s, datetimeLayouts)
	default:
		return s
	}
}

func parseableBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func parseableAny(s string, layouts []string) bool {
	for _, l := range layouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}

func parseAny(s string, layouts []string) any {
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return nil
}
