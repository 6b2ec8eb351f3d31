package builder

import (
	"path/filepath"

	"github.com/toastate/toastpack/internal/buffers"
	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/helpers"
	"github.com/toastate/toastpack/internal/tlogger"
)

const ManifestFile = "toastpack-manifest.json"

type manifestEntry struct {
	Destination string   `json:"destination"`
	Inputs      []string `json:"inputs"`
	Bytes       int      `json:"bytes"`
}

func writeBuffers(dir string, bm *buffers.Map, compress bool) ([]manifestEntry, error) {
	manifest := make([]manifestEntry, 0, bm.Len())

	for _, e := range bm.Entries() {
		data := e.Bytes()
		target := filepath.Join(dir, filepath.FromSlash(e.Destination))

		if err := files.WriteFile(target, data); err != nil {
			tlogger.Error("msg", "output file creation", "file", target, "err", err)
			return nil, err
		}
		if compress && files.Compressible(target) {
			if err := files.WriteBrotli(target, data); err != nil {
				return nil, err
			}
		}
		tlogger.Debug("msg", "written", "dest", e.Destination, "files", len(e.InputFiles), "bytes", len(data))

		manifest = append(manifest, manifestEntry{
			Destination: e.Destination,
			Inputs:      e.InputFiles,
			Bytes:       len(data),
		})
	}
	return manifest, nil
}

func writeManifest(dir string, manifest []manifestEntry) error {
	b, err := helpers.MarshalJson(manifest)
	if err != nil {
		return err
	}
	return files.WriteFile(filepath.Join(dir, ManifestFile), b)
}

// syncDirectory mirrors the output tree into deployDir when both exist.
func syncDirectory(outputDir, deployDir string) StepResult {
	if deployDir == "" {
		return skipped(deployDir, SkipNoDeployDir, "")
	}
	if !files.Exists(outputDir) {
		return skipped(deployDir, SkipMissingOutput, outputDir)
	}
	if !files.Exists(deployDir) {
		return skipped(deployDir, SkipMissingDeploy, deployDir)
	}
	if err := files.CopyDir(outputDir, deployDir); err != nil {
		return skipped(deployDir, SkipCopyFailed, err.Error())
	}
	return StepResult{Done: true, Path: deployDir}
}
