package estrace

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// CurrentCommit is the git commit, set with -ldflags at build time. The vcs
// revision stamped by the go command is used when it is empty.
var CurrentCommit string

// CurrentVersionNumber is the current application's version literal
const CurrentVersionNumber = "0.4.0-dev"

// InstrumentationName is the name the tracer and meter are registered under.
const InstrumentationName = "github.com/tracekit/estrace"

const clientModulePath = "github.com/elastic/go-elasticsearch"

// ClientModule is a go-elasticsearch module linked into the binary.
type ClientModule struct {
	Path    string
	Version string
}

type VersionInfo struct {
	Version string
	Commit  string
	System  string
	Golang  string
	Clients []ClientModule
}

var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo describes the running binary, including the go-elasticsearch
// clients it was built with.
func GetVersionInfo() *VersionInfo {
	info := &VersionInfo{
		Version: CurrentVersionNumber,
		Commit:  CurrentCommit,
		System:  runtime.GOARCH + "/" + runtime.GOOS,
		Golang:  runtime.Version(),
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Commit == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
			}
		}
	}
	for _, dep := range bi.Deps {
		if dep.Path != clientModulePath && !strings.HasPrefix(dep.Path, clientModulePath+"/") {
			continue
		}
		m := ClientModule{Path: dep.Path, Version: dep.Version}
		if dep.Replace != nil && dep.Replace.Version != "" {
			m.Version = dep.Replace.Version
		}
		info.Clients = append(info.Clients, m)
	}
	return info
}

// UserAgent is sent by the estrace command: estrace/<version>, followed by
// the short commit when known.
func (v *VersionInfo) UserAgent() string {
	ua := "estrace/" + v.Version
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		ua += "/" + commit
	}
	return ua
}
