// Package wrapper generates the per-executable dispatcher scripts that end
// users invoke. A dispatcher probes the host's C-runtime version, picks the
// first compatible platform bundle, builds the runtime library search path,
// and execs the real binary with all arguments and streams passed through.
package wrapper
