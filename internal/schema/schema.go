// Package schema holds the HCL block structures that build configuration
// files decode into, before translation into the format-agnostic model.
package schema

import "github.com/hashicorp/hcl/v2"

// Platform represents a `platform` block: one named ABI compatibility tier.
// Declaration order across files is matching priority order.
type Platform struct {
	ID     string `hcl:"id,label"`
	ABIMin string `hcl:"abi_min"`
	ABIMax string `hcl:"abi_max"`
}

// Tool represents a `tool` block: one build candidate for a named tool.
// Order is kept as an expression so the loader can reject non-integer and
// negative hints with a precise diagnostic instead of a generic conversion
// error.
type Tool struct {
	Name   string         `hcl:"name,label"`
	Order  hcl.Expression `hcl:"order"`
	Script string         `hcl:"script"`
}

// Candidate represents a `candidate` block inside a wrapper: where the real
// binary lives under one platform's bundle.
type Candidate struct {
	Platform   string `hcl:"platform"`
	Path       string `hcl:"path"`
	RuntimeEnv bool   `hcl:"runtime_env,optional"`
}

// Wrapper represents a `wrapper` block: one logical executable name and its
// per-platform candidates in priority order.
type Wrapper struct {
	Name       string       `hcl:"name,label"`
	Candidates []*Candidate `hcl:"candidate,block"`
}

// Root represents the top-level structure of a build configuration file.
type Root struct {
	Platforms []*Platform `hcl:"platform,block"`
	Tools     []*Tool     `hcl:"tool,block"`
	Wrappers  []*Wrapper  `hcl:"wrapper,block"`
	Body      hcl.Body    `hcl:",remain"`
}
