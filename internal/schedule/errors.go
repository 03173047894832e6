package schedule

import "errors"

// Construction errors. Values that fail validation never reach the analyzer.
var (
	ErrInvalidItem     = errors.New("invalid work item")
	ErrInvalidBlackout = errors.New("invalid blackout interval")
	ErrDuplicateItem   = errors.New("duplicate item id")
	ErrUnknownParent   = errors.New("parent item not found")
	ErrCycle           = errors.New("parent chain forms a cycle")
	ErrItemNotFound    = errors.New("item not found")
)
