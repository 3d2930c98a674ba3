package textfix

import (
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	appLog "fixturecal/internal/log"
)

// fileCodec keeps numbers as written and does not escape <, > and &.
// Keys come out sorted, so repeated runs are stable. Only files whose
// content changed are re-encoded.
var fileCodec = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
	EscapeHTML:  false,
}.Froze()

// Report counts the work RepairDir did.
type Report struct {
	Scanned int
	Changed int
}

// RepairDir rewrites every *.json file under root whose decoded content
// changes under the table repair followed by Recode. Files that do not
// decode are skipped. Output is indented with two spaces and ends with a
// newline.
func RepairDir(root string) (Report, error) {
	var rep Report

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		rep.Scanned++

		changed, err := RepairFile(path)
		if err != nil {
			appLog.Error("repair skipped file", err, "path", path)
			return nil
		}
		if changed {
			rep.Changed++
			appLog.Info("repaired file", "path", path)
		}
		return nil
	})
	if err != nil {
		return rep, errors.Wrapf(err, "walk %s", root)
	}
	return rep, nil
}

// RepairFile repairs one JSON file in place and reports whether it was
// rewritten. A file with nothing to repair is left byte for byte as it is,
// whatever its key order or layout.
func RepairFile(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, errors.WithStack(err)
	}

	var doc any
	if err := fileCodec.Unmarshal(raw, &doc); err != nil {
		return false, errors.Wrapf(err, "decode %s", path)
	}

	fixed := RecodeValue(Value(doc))
	if reflect.DeepEqual(doc, fixed) {
		return false, nil
	}

	out, err := fileCodec.MarshalIndent(fixed, "", "  ")
	if err != nil {
		return false, errors.Wrapf(err, "encode %s", path)
	}
	out = append(out, '\n')

	info, err := os.Stat(path)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}
