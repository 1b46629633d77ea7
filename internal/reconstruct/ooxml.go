// Package reconstruct re-emits output artifacts from an extracted document
// and a translation map. Each format has its own rebuilder; all of them
// treat a missing translation as "keep the source text" and never fail a
// whole document over a single unresolvable block.
package reconstruct

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"doc-translator/internal/types"
)

// rewriteArchive copies an OOXML container to dst, replacing the payload of
// the parts named in replacements and carrying every other entry over with
// its stored bytes untouched.
func rewriteArchive(src, dst string, replacements map[string][]byte) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return types.NewAppError(types.ErrReconstruction,
			"cannot reopen source document", err)
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return types.NewAppError(types.ErrReconstruction,
			"cannot create output file", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range zr.File {
		if data, ok := replacements[f.Name]; ok {
			w, err := zw.Create(f.Name)
			if err != nil {
				return types.NewAppError(types.ErrReconstruction,
					"cannot write "+f.Name, err)
			}
			if _, err := w.Write(data); err != nil {
				return types.NewAppError(types.ErrReconstruction,
					"cannot write "+f.Name, err)
			}
			continue
		}

		w, err := zw.CreateRaw(&f.FileHeader)
		if err != nil {
			return types.NewAppError(types.ErrReconstruction,
				"cannot copy "+f.Name, err)
		}
		rc, err := f.OpenRaw()
		if err != nil {
			return types.NewAppError(types.ErrReconstruction,
				"cannot copy "+f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			return types.NewAppError(types.ErrReconstruction,
				"cannot copy "+f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return types.NewAppError(types.ErrReconstruction,
			"cannot finalize output file", err)
	}
	return nil
}

// readPart returns the payload of one archive entry.
func readPart(path, part string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrReconstruction,
			"cannot reopen source document", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, types.NewAppError(types.ErrReconstruction,
				"cannot read "+part, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, types.NewAppError(types.ErrReconstruction,
		fmt.Sprintf("%s has no %s part", filepath.Base(path), part), nil)
}
