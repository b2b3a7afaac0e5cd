// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections with the pragmas the column
// store relies on and (optionally) registering SQL scalar functions for
// inspecting composite index keys. It intentionally keeps a thin surface so
// other packages can share the same driver instance.
package engine
