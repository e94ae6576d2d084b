package viewsql

import errors "gopkg.in/src-d/go-errors.v1"

// Invariant violations. These abort compilation: the statement tree is
// malformed in a way structural validation cannot see.
var (
	// ErrUnsupportedStatement is returned for statement types the
	// compiler does not know.
	ErrUnsupportedStatement = errors.NewKind("unsupported statement type: %T")

	// ErrNilStatement is returned when Compile is given a nil statement.
	ErrNilStatement = errors.NewKind("cannot compile nil statement")

	// ErrUnknownAlias is returned when a condition, join or function
	// references an alias no table of the query declares.
	ErrUnknownAlias = errors.NewKind("alias %q is not declared by any table of the query")

	// ErrUnknownCTEColumn is returned when a table reading a CTE names a
	// column the CTE does not expose.
	ErrUnknownCTEColumn = errors.NewKind("column %q is not exposed by CTE %q")

	// ErrForwardCTEReference is returned when a CTE reads a CTE declared
	// after it.
	ErrForwardCTEReference = errors.NewKind("CTE %q reads CTE %q, which is declared later")

	// ErrComputedColumn is returned when a searchable column resolves to an
	// aggregate output, which has no physical column to index.
	ErrComputedColumn = errors.NewKind("column %q of %q is computed by %s and cannot be indexed")

	// ErrDisconnectedJoin is returned when neither side of a join is part
	// of the FROM chain built so far.
	ErrDisconnectedJoin = errors.NewKind("join %d between %q and %q is not connected to the preceding tables")

	// ErrRedundantJoin is returned when both sides of a join are already
	// part of the FROM chain.
	ErrRedundantJoin = errors.NewKind("join %d between %q and %q introduces no new table")

	// ErrUnknownSearchColumn is returned by SearchQuery for a value keyed
	// by a column the view does not expose as searchable.
	ErrUnknownSearchColumn = errors.NewKind("column %q is not a searchable column of view %q")
)
