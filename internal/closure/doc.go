// Package closure computes the transitive native shared-library closure of a
// platform staging tree and stages copies of every resolvable dependency
// into the tree's flat library directory. Collection iterates to a fixed
// point: libraries copied in one pass can introduce dependencies of their
// own, so passes repeat until a pass copies nothing.
package closure
