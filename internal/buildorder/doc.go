// Package buildorder turns a set of tool build candidates into a total build
// sequence. Ordering is a flat priority over integer hints, not a dependency
// graph: tools that must exist before others simply carry lower hints.
package buildorder
