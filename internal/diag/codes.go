package diag

import (
	"fmt"
	"strconv"
)

// Code is a stable rule identifier: an upper-case category prefix followed by
// a four-digit number, e.g. "MNT3011".
type Code string

const (
	UnknownCode Code = "UNK0000"
	// ParseIncomplete marks files the parser had to recover in.
	ParseIncomplete Code = "SYN0001"
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	ParseIncomplete: "Source could not be parsed completely",
}

// ID returns the identifier as printed in reports.
func (c Code) ID() string {
	if c == "" {
		return string(UnknownCode)
	}
	return string(c)
}

// Category returns the letter prefix ("MNT" for "MNT3011").
func (c Code) Category() string {
	s := string(c)
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	return s[:i]
}

// Number returns the numeric part, -1 for malformed codes.
func (c Code) Number() int {
	n, err := strconv.Atoi(string(c)[len(c.Category()):])
	if err != nil {
		return -1
	}
	return n
}

// Title returns the description of a built-in code. Rule titles live in the
// rule catalog.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return ""
	}
	return desc
}

func (c Code) String() string {
	if t := c.Title(); t != "" {
		return fmt.Sprintf("[%s]: %s", c.ID(), t)
	}
	return c.ID()
}

// ParseCode validates s as a code.
func ParseCode(s string) (Code, error) {
	c := Code(s)
	cat := c.Category()
	digits := s[len(cat):]
	if cat == "" || len(cat) > 4 || len(digits) != 4 {
		return "", fmt.Errorf("malformed diagnostic code %q", s)
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return "", fmt.Errorf("malformed diagnostic code %q", s)
		}
	}
	return c, nil
}
