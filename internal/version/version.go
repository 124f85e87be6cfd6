package version

import "runtime"

// 以下变量可在构建时通过 -ldflags "-X music-room/internal/version.Version=..." 覆盖
var (
	// 对外公布的 API 版本
	Version = "1.0.0"
	// Git commit
	Commit string
	// 构建日期
	Date string
)

type GoMetadata struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// Info 是 /api/version 返回的构建信息
type Info struct {
	Version string     `json:"version"`
	Commit  string     `json:"commit"`
	Date    string     `json:"build_date"`
	Go      GoMetadata `json:"go"`
}

func Get() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		Go: GoMetadata{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
		},
	}
}
