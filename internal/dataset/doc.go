// Package dataset builds the canonical dataset from partial collections.
//
// A build is a chain of pure stages over in-memory records:
// LoadSources, Validate, Deduplicate, Order and finally Writer.Write, which
// replaces every configured output target. Builder runs the chain.
package dataset
