package rule

import "errors"

var (
	ErrMissingCode   = errors.New("rule has no code")
	ErrNoKinds       = errors.New("rule lists no node kinds")
	ErrNoCheck       = errors.New("rule has neither Check nor Finish")
	ErrDuplicateCode = errors.New("duplicate rule code")
	ErrUnknownRule   = errors.New("unknown rule")
)
