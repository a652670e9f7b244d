package abi

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/toolcrate/internal/ctxlog"
)

// Prober reads the C-runtime version of the machine it runs on.
type Prober interface {
	HostVersion(ctx context.Context) (Version, error)
}

// GlibcProber determines the host's glibc version by asking the C runtime
// itself. getconf is authoritative where present; ldd's banner is the
// fallback for hosts without it.
type GlibcProber struct{}

// HostVersion implements Prober.
func (GlibcProber) HostVersion(ctx context.Context) (Version, error) {
	logger := ctxlog.FromContext(ctx)

	out, err := exec.CommandContext(ctx, "getconf", "GNU_LIBC_VERSION").Output()
	if err != nil {
		logger.Debug("getconf probe failed, falling back to ldd.", "error", err)
		out, err = exec.CommandContext(ctx, "ldd", "--version").Output()
		if err != nil {
			return Version{}, fmt.Errorf("unable to read host C runtime version: %w", err)
		}
	}

	banner := firstLine(string(out))
	v, err := Extract(banner)
	if err != nil {
		return Version{}, err
	}

	logger.Debug("Host C runtime version detected.", "banner", banner, "version", v.String())
	return v, nil
}

// StaticProber returns a fixed version; used when the caller supplies the
// host version explicitly instead of probing.
type StaticProber struct {
	Version Version
}

// HostVersion implements Prober.
func (p StaticProber) HostVersion(context.Context) (Version, error) {
	return p.Version, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
