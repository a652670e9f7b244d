// Package platform decides which registered platform profile, if any, is
// ABI-compatible with a given host. Matching is a pure, synchronous decision
// over the registry's declared priority order.
package platform
