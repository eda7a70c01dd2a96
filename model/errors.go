package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/extmodel/metadata"
)

// ErrMalformedIdentifier is returned for identifiers that are not of the
// form NAMESPACE:NAME.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// ParseIdentifier splits a NAMESPACE:NAME identifier.
func ParseIdentifier(id string) (namespace, name string, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q, expected NAMESPACE:NAME", ErrMalformedIdentifier, id)
	}
	return parts[0], parts[1], nil
}

// ErrorModel is an error type an extension can raise. Errors form a tree
// through their parent links.
type ErrorModel struct {
	Namespace  string
	Type       string
	Handleable bool
	Parent     *ErrorModel
}

// NewErrorModel creates a handleable error.
func NewErrorModel(namespace, errorType string, parent *ErrorModel) *ErrorModel {
	return &ErrorModel{Namespace: namespace, Type: errorType, Handleable: true, Parent: parent}
}

// Identifier returns NAMESPACE:TYPE.
func (e *ErrorModel) Identifier() string {
	return e.Namespace + ":" + e.Type
}

// IsSubtypeOf reports whether e is other or one of its descendants.
func (e *ErrorModel) IsSubtypeOf(other *ErrorModel) bool {
	seen := make(map[*ErrorModel]bool)
	for cur := e; cur != nil && !seen[cur]; cur = cur.Parent {
		if cur == other || cur.Identifier() == other.Identifier() {
			return true
		}
		seen[cur] = true
	}
	return false
}

func (e *ErrorModel) String() string {
	return e.Identifier()
}

// NotificationModel is a notification an extension can fire.
type NotificationModel struct {
	Namespace string
	Name      string
	Type      *metadata.Type
}

// Identifier returns NAMESPACE:NAME.
func (n *NotificationModel) Identifier() string {
	return n.Namespace + ":" + n.Name
}
