// Package index maintains secondary indexes over records kept in a
// column.Store and serves lookups through them.
//
// A Unique index maps a composite key to one primary key in a standard
// namespace. A Range index keeps, under each composite key, a super column
// per write named by a time-ordered token, so a Cursor can page through the
// matches chronologically (or in reverse) and resume from the last token it
// returned. Neither index copies record content; matches are hydrated through
// a Loader and re-validated before they are returned.
//
// Index and primary writes are not transactional. Unique lookups delete
// mappings whose record no longer exists; range scans skip entries whose
// record is gone or no longer matches the query, and reclaim them when the
// RemovalTombstone policy is active.
package index
