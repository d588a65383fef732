package ir

import "errors"

// Construction-time errors. All of them are detected eagerly at the call
// that introduced the problem and never deferred to verification; a failed
// call leaves the IR untouched.
var (
	// ErrTypeMismatch rejects a value constructed against an incompatible
	// type, such as a literal that does not fit the requested width.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDuplicateSymbol rejects a second declaration of a module-level name
	// with a different signature or type.
	ErrDuplicateSymbol = errors.New("duplicate symbol")

	// ErrUseAfterDispose rejects any operation through a disposed Context.
	ErrUseAfterDispose = errors.New("use after dispose")

	// ErrIllTypedOperation rejects a build operation whose operands violate
	// the operation's type rule.
	ErrIllTypedOperation = errors.New("ill-typed operation")

	// ErrInvalidInsertionPoint rejects a build operation that is illegal at
	// the cursor's position, such as appending after a terminator.
	ErrInvalidInsertionPoint = errors.New("invalid insertion point")

	// ErrCrossContext rejects a value or type owned by a different Context.
	ErrCrossContext = errors.New("cross-context reference")
)
