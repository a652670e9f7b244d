package wrapper

import "text/template"

// SystemLibPath is the host's own library directory segment. It is placed
// BEFORE the bundle's private library directory in the constructed search
// path: bundled libraries must never shadow the host's core runtime.
// Reversing this ordering has produced startup crashes; treat it as a hard
// contract.
const SystemLibPath = "/lib64:/usr/lib64:/lib:/usr/lib"

// Dispatcher exit codes, reserved and distinct so calling automation can
// branch on outcome.
const (
	// ExitUnsupportedHost is returned when no platform bundle is compatible
	// with the host, or the host's runtime version cannot be determined.
	ExitUnsupportedHost = 101
	// ExitCorruptDistribution is returned when a profile matched but its
	// bundle is missing the real binary.
	ExitCorruptDistribution = 102
)

// dispatcherTemplate is the POSIX sh dispatcher emitted per logical
// executable. Candidates are tried in catalog priority order; the first
// whose ABI range contains the host version wins.
var dispatcherTemplate = template.Must(template.New("dispatcher").Parse(`#!/bin/sh
# Generated by toolcrate for "{{.Name}}". Do not edit.
set -u

self_dir=$(CDPATH='' cd -- "$(dirname -- "$0")" && pwd)

banner=$(getconf GNU_LIBC_VERSION 2>/dev/null) || banner=$(ldd --version 2>/dev/null | sed -n 1p)
host=$(printf '%s\n' "$banner" | grep -o '[0-9][0-9]*\.[0-9][0-9]*' | sed -n 1p)
if [ -z "$host" ]; then
    echo "{{.Name}}: cannot determine host C runtime version (got '$banner')" >&2
    exit {{.ExitUnsupportedHost}}
fi
host_major=${host%%.*}
host_minor=${host#*.}

# in_range MAJOR MINOR LO_MAJOR LO_MINOR HI_MAJOR HI_MINOR
in_range() {
    [ "$1" -gt "$3" ] || { [ "$1" -eq "$3" ] && [ "$2" -ge "$4" ]; } || return 1
    [ "$1" -lt "$5" ] || { [ "$1" -eq "$5" ] && [ "$2" -le "$6" ]; } || return 1
    return 0
}
{{range .Candidates}}
if in_range "$host_major" "$host_minor" {{.MinMajor}} {{.MinMinor}} {{.MaxMajor}} {{.MaxMinor}}; then
    bundle="$self_dir/{{.BundleDir}}"
    real="$bundle/{{.BinPath}}"
    if [ ! -x "$real" ]; then
        echo "{{$.Name}}: distribution is corrupt: missing $real (platform {{.ProfileID}})" >&2
        exit {{$.ExitCorruptDistribution}}
    fi
{{- if .RuntimeEnv}}
    # State setup runs before the bundle library path is active, so the
    # filesystem tools involved never load bundled libraries.
    state_dir="$self_dir/state/{{$.Name}}"
    mkdir -p "$state_dir/config" "$state_dir/data" "$state_dir/state" "$state_dir/cache"
    XDG_CONFIG_HOME="$state_dir/config" \
    XDG_DATA_HOME="$state_dir/data" \
    XDG_STATE_HOME="$state_dir/state" \
    XDG_CACHE_HOME="$state_dir/cache" \
    LD_LIBRARY_PATH="{{$.SystemLibPath}}:$bundle/{{$.LibDirName}}" \
        exec "$real" "$@"
{{- else}}
    LD_LIBRARY_PATH="{{$.SystemLibPath}}:$bundle/{{$.LibDirName}}" \
        exec "$real" "$@"
{{- end}}
fi
{{end}}
echo "{{.Name}}: no compatible build for this host (C runtime $host)" >&2
exit {{.ExitUnsupportedHost}}
`))

// templateData is the model the dispatcher template renders from.
type templateData struct {
	Name                    string
	SystemLibPath           string
	LibDirName              string
	ExitUnsupportedHost     int
	ExitCorruptDistribution int
	Candidates              []templateCandidate
}

// templateCandidate is one platform bundle choice embedded in the script.
type templateCandidate struct {
	ProfileID  string
	MinMajor   int
	MinMinor   int
	MaxMajor   int
	MaxMinor   int
	BundleDir  string
	BinPath    string
	RuntimeEnv bool
}
