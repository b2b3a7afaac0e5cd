// Package model binds a record type to its primary namespace and its
// secondary indexes. A Model owns the index registration table of its type:
// indexes are declared once, then every Save and Delete keeps them in step
// with the primary record, and lookups are served through typed index
// handles or by accessor name.
package model
