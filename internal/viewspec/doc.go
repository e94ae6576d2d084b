// Package viewspec provides the declarative view specification model
// compiled by internal/viewsql.
//
// A ViewSpec is a tree of tables, columns, joins, common table expressions
// (CTEs), aggregate functions and boolean conditions:
//
//	[CUE / YAML changelog] → [specfile loader] → [viewspec.Statement] → [viewsql.Compile] → SQL text
//
// The model is plain data. Every nested spec is owned by value by its parent,
// so a tree can be copied, hashed and compared without aliasing concerns.
// Nothing in this package renders SQL.
//
// SEALED INTERFACES:
//
// Statement is a sealed interface using the marker method pattern. Only the
// types in this package implement it:
//
//	switch s := stmt.(type) {
//	case CreateSearchCondition:
//	    // view + search indexes
//	case CreateSimpleSearchCondition:
//	    // single table view + one search index
//	case DropSearchCondition:
//	    // drop view
//	case CreateManyToMany:
//	    // relation view + array index
//	}
//
// VALIDATION:
//
// Validate performs structural checks only (required fields, enum values,
// join column arity, alias uniqueness, function parameters, limits). It
// never consults a database schema. All problems are collected and returned
// together; compilation must not proceed while any are present.
//
// Alias resolution (a condition naming an alias no table declares) is not a
// structural check. It is detected by the compiler and reported as a fatal
// error, because it means the tree itself is malformed.
package viewspec
