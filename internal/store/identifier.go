package store

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/xerrors"

	"github.com/dsmirnov/containerstore/internal/containers"
)

const maxIdentifierLength = 255

var appDataIdentifierRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)+$`)

// Identifiers are case-sensitive and compared byte-wise: the store never
// normalizes them.
func validateIdentifier(class containers.Class, id string) error {
	invalid := func(format string, args ...any) error {
		return containers.NewError(containers.ErrInvalidIdentifier, id, xerrors.Errorf(format, args...))
	}

	switch {
	case id == "":
		return invalid("the identifier is empty")
	case len(id) > maxIdentifierLength:
		return invalid("the identifier is longer than %d bytes", maxIdentifierLength)
	case !utf8.ValidString(id):
		return invalid("the identifier is not a valid UTF-8 string")
	case strings.ContainsAny(id, "/\x00"):
		return invalid("the identifier contains forbidden characters")
	case id == "." || id == "..":
		return invalid("the identifier is a reserved name")
	}

	if class == containers.ClassAppData && !appDataIdentifierRegex.MatchString(id) {
		return invalid("app-data container identifiers must be in reverse-DNS form")
	}

	return nil
}
