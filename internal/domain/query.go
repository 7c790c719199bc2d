package domain

import (
	"strconv"
	"strings"
)

// FilterField is a conference property that can be filtered on.
type FilterField string

const (
	FieldCity         FilterField = "city"
	FieldTopics       FilterField = "topics"
	FieldMonth        FilterField = "month"
	FieldMaxAttendees FilterField = "maxAttendees"
	// FieldSeatsAvailable is used internally by the announcement query and is not accepted from clients.
	FieldSeatsAvailable FilterField = "seatsAvailable"
)

// IsNumeric reports whether values for f are integers.
func (f FilterField) IsNumeric() bool {
	return f == FieldMonth || f == FieldMaxAttendees || f == FieldSeatsAvailable
}

// FilterOperator is a comparison operator.
type FilterOperator string

const (
	OpEQ   FilterOperator = "="
	OpGT   FilterOperator = ">"
	OpGTEQ FilterOperator = ">="
	OpLT   FilterOperator = "<"
	OpLTEQ FilterOperator = "<="
	OpNE   FilterOperator = "!="
)

// IsInequality reports whether o is anything other than equality.
func (o FilterOperator) IsInequality() bool { return o != OpEQ }

var filterFields = map[string]FilterField{
	"CITY":          FieldCity,
	"TOPIC":         FieldTopics,
	"MONTH":         FieldMonth,
	"MAX_ATTENDEES": FieldMaxAttendees,
	"city":          FieldCity,
	"topics":        FieldTopics,
	"month":         FieldMonth,
	"maxAttendees":  FieldMaxAttendees,
}

var filterOperators = map[string]FilterOperator{
	"EQ":   OpEQ,
	"GT":   OpGT,
	"GTEQ": OpGTEQ,
	"LT":   OpLT,
	"LTEQ": OpLTEQ,
	"NE":   OpNE,
	"=":    OpEQ,
	">":    OpGT,
	">=":   OpGTEQ,
	"<":    OpLT,
	"<=":   OpLTEQ,
	"!=":   OpNE,
}

// ConferenceFilter is a filter as sent by a client, e.g. {"field":"CITY","operator":"EQ","value":"London"}.
// swagger:model ConferenceFilter
type ConferenceFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Filter is a validated predicate. Value holds an int for numeric fields and a string otherwise.
type Filter struct {
	Field    FilterField
	Operator FilterOperator
	Value    any
}

// ConferenceQuery is a validated set of filters with at most one inequality field.
type ConferenceQuery struct {
	Filters         []Filter
	InequalityField FilterField
}

// OrderBy returns the sort keys: the inequality field first when there is one, then name.
func (q ConferenceQuery) OrderBy() []string {
	if q.InequalityField != "" {
		return []string{string(q.InequalityField), "name"}
	}
	return []string{"name"}
}

// BuildConferenceQuery validates client filters and converts numeric values.
// Unknown fields or operators fail with ErrInvalidFilter; inequality
// operators on more than one distinct field fail with ErrInequalityFilter.
func BuildConferenceQuery(raw []ConferenceFilter) (ConferenceQuery, error) {
	var q ConferenceQuery
	for _, rf := range raw {
		field, ok := filterFields[strings.TrimSpace(rf.Field)]
		if !ok {
			return ConferenceQuery{}, ErrInvalidFilter
		}
		op, ok := filterOperators[strings.TrimSpace(rf.Operator)]
		if !ok {
			return ConferenceQuery{}, ErrInvalidFilter
		}
		f := Filter{Field: field, Operator: op, Value: rf.Value}
		if field.IsNumeric() {
			n, err := strconv.Atoi(strings.TrimSpace(rf.Value))
			if err != nil {
				return ConferenceQuery{}, NewValidationError("filter value for %s must be an integer", field)
			}
			f.Value = n
		}
		if op.IsInequality() {
			if q.InequalityField != "" && q.InequalityField != field {
				return ConferenceQuery{}, ErrInequalityFilter
			}
			q.InequalityField = field
		}
		q.Filters = append(q.Filters, f)
	}
	return q, nil
}

// NearlySoldOutQuery selects conferences with 0 < seatsAvailable <= 5.
func NearlySoldOutQuery() ConferenceQuery {
	return ConferenceQuery{
		Filters: []Filter{
			{Field: FieldSeatsAvailable, Operator: OpGT, Value: 0},
			{Field: FieldSeatsAvailable, Operator: OpLTEQ, Value: 5},
		},
		InequalityField: FieldSeatsAvailable,
	}
}
