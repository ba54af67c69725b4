package catalog

import "errors"

// Construction is all-or-nothing: any of these aborts Build and no partial
// graph is returned. Callers can match with errors.Is; the wrapped message
// always names the offending object's qualified context.
var (
	// ErrUnknownCode indicates an enumerated catalog code outside its
	// fixed vocabulary (generation mode, FK rule, trigger timing, ...).
	ErrUnknownCode = errors.New("unrecognized catalog code")

	// ErrMissingParent indicates a child row naming a parent that no row
	// declared, meaning the extraction was internally inconsistent.
	ErrMissingParent = errors.New("row references undeclared parent")

	// ErrMissingRef indicates a by-name cross reference (a field's
	// datatype, a foreign key's target, a trigger's relation) that could
	// not be resolved against the completed graph.
	ErrMissingRef = errors.New("unresolved object reference")

	// ErrDuplicatePrimaryKey indicates a table declaring more than one
	// primary key.
	ErrDuplicatePrimaryKey = errors.New("table has more than one primary key")

	// ErrDuplicateName indicates two objects sharing one name inside a
	// single namespace, which would make Find ambiguous.
	ErrDuplicateName = errors.New("duplicate object name in namespace")
)
