package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/tlogger"
)

// SkipReason names the guard that stopped a best-effort step.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipNotAllowed    SkipReason = "not allowed"
	SkipTooShallow    SkipReason = "path too shallow"
	SkipNotChild      SkipReason = "not a child of the root directory"
	SkipRemoveFailed  SkipReason = "remove failed"
	SkipNoDeployDir   SkipReason = "no deploy directory"
	SkipMissingOutput SkipReason = "output directory not found"
	SkipMissingDeploy SkipReason = "deploy directory not found"
	SkipCopyFailed    SkipReason = "copy failed"
)

// StepResult is the outcome of a step that never fails the build.
type StepResult struct {
	Done   bool
	Path   string
	Reason SkipReason
	Detail string
}

func skipped(path string, reason SkipReason, detail string) StepResult {
	return StepResult{Path: path, Reason: reason, Detail: detail}
}

// clearOutput removes rootDir/name, but only when name is allowed, the path is
// deep enough and it is an immediate entry of rootDir.
func clearOutput(rootDir, name string, allowed []string, minDepth int) StepResult {
	target := filepath.Join(rootDir, name)

	if !contains(allowed, name) {
		return skipped(target, SkipNotAllowed, name)
	}

	depth := len(strings.Split(target, string(filepath.Separator)))
	if depth < minDepth {
		return skipped(target, SkipTooShallow, fmt.Sprintf("depth %d below %d", depth, minDepth))
	}

	entries, err := files.ListFiles(rootDir, false, false)
	if err != nil {
		return skipped(target, SkipNotChild, err.Error())
	}
	if !contains(entries, target) {
		return skipped(target, SkipNotChild, "not found")
	}

	if err := os.RemoveAll(target); err != nil {
		return skipped(target, SkipRemoveFailed, err.Error())
	}
	return StepResult{Done: true, Path: target}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func logSkipped(step string, r StepResult) {
	tlogger.Warn("msg", "Skipped "+step, "path", r.Path, "reason", string(r.Reason), "detail", r.Detail)
}
