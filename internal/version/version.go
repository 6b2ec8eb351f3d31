package version

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/tlogger"
	"github.com/toastate/toastpack/pkg/config"
)

const layout = "02.01.2006"

var ErrVersionFormat = errors.New("version must match DD.MM.YYYY")

var (
	versionRegexp      = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	constVersionRegexp = regexp.MustCompile(`APP_VERSION = '\d{2}\.\d{2}\.\d{4}';`)
	paramVersionRegexp = regexp.MustCompile(`\?v=\d{2}\.\d{2}\.\d{4}`)
)

// Today returns the version string of t.
func Today(t time.Time) string {
	return t.Format(layout)
}

// Validate reports whether v is a DD.MM.YYYY version string.
func Validate(v string) error {
	if !versionRegexp.MatchString(v) {
		return errors.Wrapf(ErrVersionFormat, "got %q", v)
	}
	return nil
}

// Stamped lists the files rewritten by Stamp.
type Stamped struct {
	Version string
	Files   []string
	Skipped []string
}

// Stamp writes v into the constants file and the ?v= parameters of the html
// files of vc, all relative to rootDir. Nothing is touched when v is invalid.
// Files that do not exist are skipped.
func Stamp(rootDir string, vc config.VersionConfiguration, v string) (*Stamped, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}

	res := &Stamped{Version: v}

	type target struct {
		path    string
		re      *regexp.Regexp
		replace string
	}
	var targets []target
	if vc.ConstantsFile != "" {
		targets = append(targets, target{vc.ConstantsFile, constVersionRegexp, "APP_VERSION = '" + v + "';"})
	}
	for _, f := range vc.HTMLFiles {
		targets = append(targets, target{f, paramVersionRegexp, "?v=" + v})
	}

	for _, t := range targets {
		p := filepath.Join(rootDir, t.path)
		changed, err := replaceInFile(p, t.re, t.replace)
		if err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				tlogger.Warn("msg", "version target not found", "path", p)
				res.Skipped = append(res.Skipped, t.path)
				continue
			}
			return res, err
		}
		if changed {
			res.Files = append(res.Files, t.path)
		}
		tlogger.Debug("msg", "version stamped", "path", p, "changed", changed)
	}
	return res, nil
}

func replaceInFile(path string, re *regexp.Regexp, replace string) (bool, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return false, err
	}
	out := re.ReplaceAllLiteral(data, []byte(replace))
	if bytes.Equal(out, data) {
		return false, nil
	}
	return true, files.WriteFile(path, out)
}
