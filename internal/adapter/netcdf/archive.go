package netcdf

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingSource reports that a required input file does not exist.
	ErrMissingSource = errors.New("source file missing")
	// ErrMalformedArchive reports a container file with no NetCDF payload.
	ErrMalformedArchive = errors.New("archive contains no NetCDF payload")
	// ErrSchema reports a gridded file whose coordinate or variable layout
	// does not match the expected (time, latitude, longitude) structure.
	ErrSchema = errors.New("gridded file schema invalid")
)

// ResolvePayload returns the path of the NetCDF payload for a source file.
// CDS downloads sometimes arrive as a ZIP container wrapping the .nc file;
// in that case the first payload member is extracted next to the container,
// once; a previous extraction is reused. A plain (non-ZIP) file passes
// through unchanged. A ZIP with no .nc member is a hard error: falling back
// silently would hide a broken download.
func ResolvePayload(path string, logger *slog.Logger) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingSource, err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return path, nil
		}
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	var members []string
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".nc") {
			members = append(members, f.Name)
		}
	}
	if len(members) == 0 {
		return "", fmt.Errorf("%w: %s", ErrMalformedArchive, path)
	}
	if len(members) > 1 {
		logger.Warn("archive holds multiple NetCDF members, using first", "archive", path, "member", members[0], "count", len(members))
	}

	extracted := strings.TrimSuffix(path, filepath.Ext(path)) + "_extracted.nc"
	if _, err := os.Stat(extracted); err == nil {
		logger.Info("reusing previously extracted payload", "path", extracted)
		return extracted, nil
	}

	logger.Info("extracting NetCDF payload", "archive", path, "member", members[0])
	if err := extractMember(zr, members[0], extracted); err != nil {
		return "", fmt.Errorf("extract %s from %s: %w", members[0], path, err)
	}
	return extracted, nil
}

func extractMember(zr *zip.ReadCloser, name, dst string) error {
	src, err := zr.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
