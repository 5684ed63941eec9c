// Package schema defines the relational layout used to store a flattened
// hierarchical register description.
//
// The tree component > memory map > address block > register > field >
// enumerated value is normalized into one table per level. Every child row
// references its parent through a foreign key with cascading delete, so
// removing a metadata row removes the whole component.
//
// Supporting tables (bus interfaces, ports, parameters, vendor extensions and
// the original source document) hang off the metadata row and are read but
// never mutated by the materializer.
package schema
