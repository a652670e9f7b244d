package buildorder

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
)

// Resolve produces a total order over distinct tool names, ascending by the
// minimum order hint among each tool's candidates, ties broken by tool name.
// When a tool has several candidates only the lowest-hint one executes; the
// alternates are ignored, and that decision is logged explicitly because a
// silent skip is a reliable source of confusion.
//
// Candidates with equal hints for the same tool keep declaration order: the
// first declared wins.
func Resolve(ctx context.Context, candidates []*config.ToolBuild) ([]*config.ToolBuild, error) {
	logger := ctxlog.FromContext(ctx)

	selected := make(map[string]*config.ToolBuild)
	alternates := make(map[string]int)

	for _, cand := range candidates {
		if cand.Order < 0 {
			return nil, fmt.Errorf("%w: tool %q has order hint %d", config.ErrInvalidBuildOrder, cand.Tool, cand.Order)
		}

		current, ok := selected[cand.Tool]
		if !ok {
			selected[cand.Tool] = cand
			continue
		}
		alternates[cand.Tool]++
		if cand.Order < current.Order {
			selected[cand.Tool] = cand
		}
	}

	ordered := make([]*config.ToolBuild, 0, len(selected))
	for _, cand := range selected {
		ordered = append(ordered, cand)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].Tool < ordered[j].Tool
	})

	for _, cand := range ordered {
		if n := alternates[cand.Tool]; n > 0 {
			logger.Info("Selected build candidate; ignoring alternates.",
				"tool", cand.Tool, "order", cand.Order, "script", cand.Script, "ignored_candidates", n)
		} else {
			logger.Debug("Selected sole build candidate.", "tool", cand.Tool, "order", cand.Order)
		}
	}

	return ordered, nil
}
