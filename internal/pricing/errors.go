package pricing

import "errors"

// ErrDivisionByZero is returned when both the input reserve and the
// effective input are zero, leaving the quote denominator zero.
var ErrDivisionByZero = errors.New("division by zero")
