package types

import "errors"

// Sentinel errors for configurator operations.
var (
	// ErrConditionTooDeep indicates a condition tree exceeds MaxConditionDepth.
	ErrConditionTooDeep = errors.New("condition tree exceeds maximum depth")

	// ErrTooManyInValues indicates an in/nin operator exceeds MaxInOperatorValues.
	ErrTooManyInValues = errors.New("in operator has too many values")

	// ErrBaseCodeNotFound indicates a SKU's mandatory base segment matched no
	// product. The sole hard failure of the parser.
	ErrBaseCodeNotFound = errors.New("base code matches no product")

	// ErrEmptySKU indicates a SKU input with no segments at all.
	ErrEmptySKU = errors.New("sku input is empty")

	// ErrUnknownField indicates a dependency edge references a field missing
	// from the declared order.
	ErrUnknownField = errors.New("field not in declared order")

	// ErrDependencyCycle indicates a dependency edge that would let a field
	// filter one of its own upstream ancestors.
	ErrDependencyCycle = errors.New("dependency edge violates field order")
)
