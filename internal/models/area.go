package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxAreaNameLength = 100

var (
	ErrAreaNameEmpty   = errors.New("area name cannot be empty")
	ErrAreaNameTooLong = errors.New("area name is too long")
)

// AreaName is the name of a work area ("Soldadura", "Montaje", ...).
// Users create areas ad hoc, so the vocabulary is open.
type AreaName string

// NewAreaName trims and validates raw input.
func NewAreaName(raw string) (AreaName, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrAreaNameEmpty
	}
	if utf8.RuneCountInString(name) > maxAreaNameLength {
		return "", ErrAreaNameTooLong
	}
	return AreaName(name), nil
}

func (a AreaName) String() string {
	return string(a)
}

// Matches compares area names ignoring case and surrounding whitespace.
func (a AreaName) Matches(other AreaName) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(string(other)))
}
