// Package config defines the format-agnostic configuration model for the
// application: the ordered platform profile registry, the tool build
// candidates, and the wrapper catalog, along with the Loader interface for
// reading them from a concrete format such as HCL.
package config
