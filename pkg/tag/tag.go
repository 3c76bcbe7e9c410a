// Package tag defines the opaque borrow identifier used throughout the
// borrow tree. A Tag is nothing more than a comparable value; the tree
// never interprets it beyond equality.
package tag

// Tag identifies a single borrow/reborrow of a pointer. Two tags are the
// same borrow iff they are equal.
type Tag uint64

// NodeID is the tree's own dense index for a Node, distinct from Tag so
// that tags can be minted by a caller (or, in the CLI, from scenario
// names) while the tree keeps its internal bookkeeping compact.
type NodeID uint32

// InvalidNodeID never names a real node; used as a sentinel "no parent".
const InvalidNodeID NodeID = ^NodeID(0)
