package buildinfo

import (
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X github.com/cherry/cherry-cli/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// DisplayVersion returns Version with a "v" prefix for numeric versions. An
// unset Version falls back to the module version embedded by `go install`.
func DisplayVersion() string {
	v := strings.TrimSpace(Version)
	if v == "" || v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
				v = mv
			}
		}
	}

	switch {
	case v == "" || v == "dev" || v == "(devel)":
		return "dev"
	case strings.HasPrefix(v, "v"):
		return v
	case v[0] >= '0' && v[0] <= '9':
		return "v" + v
	}
	return v
}
