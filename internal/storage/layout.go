// Package storage owns the on-disk layout shared by the pipeline stages.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"unicode"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Layout names the collections documents move between.
type Layout struct {
	Input       string
	Sorted      string
	Output      string
	Error       string
	GroundTruth string
}

func NewLayout(d common.Directories) Layout {
	return Layout{
		Input:       d.Input,
		Sorted:      d.Sorted,
		Output:      d.Output,
		Error:       d.Error,
		GroundTruth: d.GroundTruth,
	}
}

// EnsureDirs creates the collections the pipeline writes into.
func (l Layout) EnsureDirs() error {
	for _, d := range []string{l.Input, l.Sorted, l.Output, l.Error} {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// OutputPath is where the extracted record for a source file is written.
func (l Layout) OutputPath(sourcePath string) string {
	return filepath.Join(l.Output, entity.BaseName(sourcePath)+".json")
}

// VendorDir is the routed collection for a vendor name.
func (l Layout) VendorDir(vendor string) string {
	return filepath.Join(l.Sorted, SanitizeVendor(vendor))
}

// MoveFile moves src into dstDir keeping its file name. An existing file of the same
// name is never replaced; a numeric suffix is added instead. Returns the new path.
func MoveFile(src, dstDir string) (string, error) {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dstDir, err)
	}
	dst := freeName(dstDir, filepath.Base(src))
	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("move %s: %w", src, err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return dst, nil
}

func freeName(dir, name string) string {
	dst := filepath.Join(dir, name)
	if _, err := os.Lstat(dst); errors.Is(err, os.ErrNotExist) {
		return dst
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dst = filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
		if _, err := os.Lstat(dst); errors.Is(err, os.ErrNotExist) {
			return dst
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// WriteJSON writes v with two-space indentation through a temp file and rename,
// so readers never observe a half-written record.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

const maxVendorLen = 100

// SanitizeVendor turns a model-supplied seller name into a single safe path segment.
// Markdown emphasis, quotes and labels like "Seller name:" are dropped; an empty result is Unknown.
func SanitizeVendor(name string) string {
	s := strings.TrimSpace(name)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.NewReplacer("*", "", "`", "", "\"", "", "'", "").Replace(s)
	if i := strings.Index(s, ":"); i >= 0 && strings.Contains(strings.ToLower(s[:i]), "seller") {
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:?<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, ". ")
	if r := []rune(s); len(r) > maxVendorLen {
		s = strings.TrimSpace(string(r[:maxVendorLen]))
	}
	if s == "" {
		return constants.UnknownVendor
	}
	return s
}
