package version

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Info contains versioning information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// set at build time with -ldflags "-X"
var (
	version   string
	gitCommit = "$Format:%H$"
	buildDate = "1970-01-01T00:00:00Z"
)

// Get returns the build information of the running binary
func Get() Info {
	i := Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if i.Version == "" {
		i.Version = "unknown"
		i.BuildDate = ""
		i.GitCommit = ""
	}
	return i
}

// JSON returns the version information in JSON format
func JSON() []byte {
	data, _ := json.Marshal(Get())
	return data
}
