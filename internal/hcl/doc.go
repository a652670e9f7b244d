// Package hcl provides the concrete HCL implementation of the configuration
// Loader interface defined in the `config` package. It is responsible for
// file parsing, schema decoding, and translation into the format-agnostic
// model, including validation of ABI ranges and build order hints.
package hcl
