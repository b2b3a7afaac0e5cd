// Package composite encodes ordered tuples of attribute values into single
// string row keys and derives the storage names used by secondary indexes.
//
// Keys are length-prefixed ("5:alice3:nyc"), so two different tuples never
// encode to the same key even when a value contains characters that would
// act as a separator in a plain join.
package composite
