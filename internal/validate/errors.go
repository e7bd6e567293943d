package validate

import "errors"

var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrQueryTooLong      = errors.New("query too long")
	ErrInvalidCourse     = errors.New("invalid course id")
	ErrInvalidCapability = errors.New("invalid capability")
)
