// Package qualname tracks the fully qualified name of the type currently
// being visited.
package qualname

import (
	"errors"
	"strconv"
)

// ErrUnbalanced is returned when enter and exit calls do not pair up.
var ErrUnbalanced = errors.New("qualname: unbalanced enter/exit")

// Tracker maintains a stack of qualified type names. The zero value is
// ready to use.
type Tracker struct {
	stack     []string
	anonymous int
}

// EnterTopLevel starts a top-level type. The name is pkg.name, or name
// alone in the default package.
func (t *Tracker) EnterTopLevel(pkg, name string) error {
	if len(t.stack) > 0 {
		return ErrUnbalanced
	}

	qualified := name
	if pkg != "" {
		qualified = pkg + "." + name
	}

	t.stack = append(t.stack, qualified)
	t.anonymous = 0

	return nil
}

// EnterNested starts a member or local type of the current type.
func (t *Tracker) EnterNested(name string) error {
	if len(t.stack) == 0 {
		return ErrUnbalanced
	}

	t.stack = append(t.stack, t.Current()+"."+name)

	return nil
}

// EnterAnonymous starts an anonymous class body. Anonymous types are
// numbered from 1 in source order within their top-level type.
func (t *Tracker) EnterAnonymous() error {
	if len(t.stack) == 0 {
		return ErrUnbalanced
	}

	t.anonymous++
	t.stack = append(t.stack, t.Current()+"$"+strconv.Itoa(t.anonymous))

	return nil
}

// Exit leaves the current type and restores the enclosing name.
func (t *Tracker) Exit() error {
	if len(t.stack) == 0 {
		return ErrUnbalanced
	}

	t.stack = t.stack[:len(t.stack)-1]

	return nil
}

// Current returns the qualified name of the innermost active type, or ""
// outside any type.
func (t *Tracker) Current() string {
	if len(t.stack) == 0 {
		return ""
	}

	return t.stack[len(t.stack)-1]
}

// Depth returns the number of active types.
func (t *Tracker) Depth() int {
	return len(t.stack)
}
