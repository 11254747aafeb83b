// Package buildinfo exposes build-time version information.
//
// Release builds stamp the variables via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/docmesh-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo

// Stamped at build time; the defaults identify a local dev build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

// Info carries the stamped values in a serializable form.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
	}
}

// String renders a one-line version banner.
func String() string {
	return Version + " (" + Commit + ") built at " + BuildTime
}
