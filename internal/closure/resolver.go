package closure

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Resolver asks the dynamic linker which absolute paths an object's direct
// dependencies resolve to on this host. Dependencies the linker cannot or
// need not resolve (the virtual DSO, the loader itself, genuinely missing
// libraries) are simply absent from the result.
type Resolver interface {
	ResolvedDeps(ctx context.Context, objectPath string) ([]string, error)
}

// LddResolver resolves dependencies by running ldd against the object and
// parsing its report. This asks the real loader, so the answer reflects the
// build host's actual library search configuration.
type LddResolver struct {
	// LddPath overrides the ldd binary; empty means "ldd" from PATH.
	LddPath string
}

// ResolvedDeps implements Resolver.
func (r LddResolver) ResolvedDeps(ctx context.Context, objectPath string) ([]string, error) {
	ldd := r.LddPath
	if ldd == "" {
		ldd = "ldd"
	}

	out, err := exec.CommandContext(ctx, ldd, objectPath).CombinedOutput()
	if err != nil {
		// ldd exits non-zero for objects with no dynamic section; that is a
		// valid "no dependencies" answer, not a failure.
		if strings.Contains(string(out), "not a dynamic executable") {
			return nil, nil
		}
		return nil, fmt.Errorf("ldd failed for %q: %w: %s", objectPath, err, strings.TrimSpace(string(out)))
	}

	return parseLddOutput(string(out)), nil
}

// parseLddOutput extracts resolved absolute dependency paths from ldd's
// report. Expected line shapes:
//
//	linux-vdso.so.1 (0x00007ffc...)          virtual DSO, no path: skipped
//	libm.so.6 => /lib64/libm.so.6 (0x...)    resolved: kept
//	libfoo.so => not found                   unresolvable: skipped
//	/lib64/ld-linux-x86-64.so.2 (0x...)      the loader itself: skipped
func parseLddOutput(out string) []string {
	var deps []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		arrow := -1
		for i, f := range fields {
			if f == "=>" {
				arrow = i
				break
			}
		}
		if arrow < 0 || arrow+1 >= len(fields) {
			continue
		}
		target := fields[arrow+1]
		if !strings.HasPrefix(target, "/") {
			continue
		}
		deps = append(deps, target)
	}
	return deps
}
