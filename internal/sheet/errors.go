package sheet

import "errors"

// Integrity-guard errors. An outbound row hitting one of these is never sent.
var (
	ErrTooFewColumns   = errors.New("fewer than two distinct target columns resolved")
	ErrDuplicateColumn = errors.New("column written twice in one row")
)
