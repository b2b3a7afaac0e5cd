// Package column defines the wide-column store contract consumed by the
// index engine and a SQLite-backed implementation of it. It includes:
//   - Store and Provisioner interfaces (get/insert/slice/remove over
//     namespaces of standard or super-column rows)
//   - NamespaceDef: layout and comparator requirements of a namespace
//   - Error: typed store errors carrying a machine-readable Code
//   - SQLiteStore: durable storage on top of modernc.org/sqlite
//   - Schema helpers that create the backing tables
//
// Alternative backends live in the memstore and pebblestore subpackages;
// columntest holds the contract suite every backend must pass.
package column
