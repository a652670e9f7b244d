// Package buildstep invokes the opaque external build procedure of a tool.
// toolcrate neither knows nor cares what a build script does; the contract
// is only that it deposits its artifacts into the staging tree it is handed.
package buildstep
