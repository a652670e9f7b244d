// Package abi models the host C-runtime version that platform compatibility
// decisions are made against, and knows how to read it from a live host.
package abi
