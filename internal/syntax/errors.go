package syntax

import "errors"

var (
	// ErrNodeNotFound is returned when an edit targets a node that is not part of the tree.
	ErrNodeNotFound = errors.New("syntax: node not found")
	// ErrEmptyRoot is returned when an edit would leave a tree without a root.
	ErrEmptyRoot = errors.New("syntax: root replaced by nothing")
)
