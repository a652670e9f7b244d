package hcl

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/toolcrate/internal/abi"
	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
	"github.com/vk/toolcrate/internal/schema"
)

// translate converts the decoded HCL schema into the agnostic model and
// validates it. All order hints and ABI ranges are checked here, before any
// component consumes the model.
func (l *Loader) translate(ctx context.Context, roots []*schema.Root) (*config.Model, error) {
	model := &config.Model{}

	for _, root := range roots {
		for _, p := range root.Platforms {
			profile, err := translateProfile(p)
			if err != nil {
				return nil, err
			}
			if model.ProfileByID(profile.ID) != nil {
				return nil, fmt.Errorf("duplicate platform id %q", profile.ID)
			}
			model.Profiles = append(model.Profiles, profile)
		}

		for _, t := range root.Tools {
			build, err := translateToolBuild(t)
			if err != nil {
				return nil, err
			}
			model.Builds = append(model.Builds, build)
		}

		for _, w := range root.Wrappers {
			model.Wrappers = append(model.Wrappers, translateWrapper(w))
		}
	}

	if err := validateWrappers(ctx, model); err != nil {
		return nil, err
	}

	return model, nil
}

func translateProfile(p *schema.Platform) (*config.Profile, error) {
	min, err := abi.Parse(p.ABIMin)
	if err != nil {
		return nil, fmt.Errorf("platform %q: invalid abi_min: %w", p.ID, err)
	}
	max, err := abi.Parse(p.ABIMax)
	if err != nil {
		return nil, fmt.Errorf("platform %q: invalid abi_max: %w", p.ID, err)
	}
	if min.Compare(max) > 0 {
		return nil, fmt.Errorf("platform %q: abi_min %s exceeds abi_max %s", p.ID, min, max)
	}
	return &config.Profile{ID: p.ID, ABIMin: min, ABIMax: max}, nil
}

// translateToolBuild evaluates and validates the order hint expression. A
// hint that is not a whole, non-negative number is a configuration error,
// never silently coerced.
func translateToolBuild(t *schema.Tool) (*config.ToolBuild, error) {
	val, diags := t.Order.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: tool %q: order hint could not be evaluated: %v",
			config.ErrInvalidBuildOrder, t.Name, diags)
	}
	if val.Type() != cty.Number {
		return nil, fmt.Errorf("%w: tool %q: order hint must be a number, got %s",
			config.ErrInvalidBuildOrder, t.Name, val.Type().FriendlyName())
	}

	bf := val.AsBigFloat()
	if !bf.IsInt() {
		return nil, fmt.Errorf("%w: tool %q: order hint %s is not an integer",
			config.ErrInvalidBuildOrder, t.Name, bf.String())
	}
	order, _ := bf.Int64()
	if order < 0 {
		return nil, fmt.Errorf("%w: tool %q: order hint %d is negative",
			config.ErrInvalidBuildOrder, t.Name, order)
	}

	if t.Script == "" {
		return nil, fmt.Errorf("tool %q: script must not be empty", t.Name)
	}

	return &config.ToolBuild{Tool: t.Name, Order: int(order), Script: t.Script}, nil
}

func translateWrapper(w *schema.Wrapper) *config.Wrapper {
	out := &config.Wrapper{Name: w.Name}
	for _, c := range w.Candidates {
		out.Candidates = append(out.Candidates, &config.Candidate{
			ProfileID:  c.Platform,
			Path:       c.Path,
			RuntimeEnv: c.RuntimeEnv,
		})
	}
	return out
}

// validateWrappers checks referential integrity between the wrapper catalog
// and the platform registry.
func validateWrappers(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	seen := make(map[string]struct{})

	for _, w := range model.Wrappers {
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("duplicate wrapper %q", w.Name)
		}
		seen[w.Name] = struct{}{}

		if len(w.Candidates) == 0 {
			return fmt.Errorf("wrapper %q declares no candidates", w.Name)
		}
		for _, c := range w.Candidates {
			if model.ProfileByID(c.ProfileID) == nil {
				return fmt.Errorf("wrapper %q references unknown platform %q", w.Name, c.ProfileID)
			}
			if c.Path == "" {
				return fmt.Errorf("wrapper %q: candidate for platform %q has an empty path", w.Name, c.ProfileID)
			}
		}
		logger.Debug("Wrapper catalog entry validated.", "wrapper", w.Name, "candidates", len(w.Candidates))
	}

	return nil
}
