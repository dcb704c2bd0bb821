// Package archive packages finished backup directories into single tar.gz
// files and unpacks them again before a restore. Packing is atomic: the
// archive is written under a temporary name and renamed into place, so a
// crash mid-archive never leaves a half-written file that could be mistaken
// for a valid backup unit.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Pack compresses srcDir into dstPath and removes srcDir afterwards. The
// directory is only removed once the rename has succeeded.
func Pack(srcDir, dstPath string) error {
	if err := writeArchive(srcDir, dstPath); err != nil {
		return err
	}
	if err := FixOwnership(dstPath, filepath.Dir(dstPath)); err != nil {
		return err
	}
	return os.RemoveAll(srcDir)
}

func writeArchive(srcDir, dstPath string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), filepath.Base(dstPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	gw := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gw)
	if err = addTree(tw, srcDir); err != nil {
		return err
	}
	if err = tw.Close(); err != nil {
		return fmt.Errorf("finish tar: %w", err)
	}
	if err = gw.Close(); err != nil {
		return fmt.Errorf("finish gzip: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), dstPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename archive into place: %w", err)
	}
	return nil
}

func addTree(tw *tar.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("archive %s: %w", rel, err)
		}
		return nil
	})
}

// Unpack extracts the archive at srcPath into dstDir, recreating the
// directory layout the engine originally wrote. Existing files are
// overwritten. Entries escaping dstDir are rejected.
func Unpack(srcPath, dstDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", srcPath, err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", srcPath, err)
		}
		name := filepath.FromSlash(hdr.Name)
		if strings.Contains(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archive %s contains unsafe path %q", srcPath, hdr.Name)
		}
		target := filepath.Join(dstDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// backup directories only hold plain files and dirs
		}
	}
}
