package archive

import (
	"bytes"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	// Ensure SHA256 available for checksum calculation.
	_ "crypto/sha256"
)

const (
	// DefaultSource is the handler file packaged when none is given.
	DefaultSource = "lambda_function.py"

	// DefaultFilename is the archive produced and deployed by default.
	DefaultFilename = "lambda.zip"

	// DefaultFileMode is used for the archive file itself.
	DefaultFileMode os.FileMode = 0o644

	// checksumFunction matches the digest behind Lambda's CodeSha256.
	checksumFunction crypto.Hash = crypto.SHA256
)

var (
	errHashUnavailable = errors.New("hash function unavailable")
	errNotRegularFile  = errors.New("not a regular file")
	errEntryNotFound   = errors.New("archive entry not found")
)

// Info describes a freshly built archive.
type Info struct {
	// Path is where the archive was written.
	Path string
	// Entry is the name of the single member.
	Entry string
	// Checksum is the base64 SHA-256 digest of the archive bytes.
	Checksum string
	// Size is the archive size in bytes.
	Size int64
}

// Build packages source into a single-entry zip at dest.
// The member is named after the base name of source and keeps its mode and modification time.
func Build(source, dest string) (*Info, error) {
	if source == "" {
		source = DefaultSource
	}

	if dest == "" {
		dest = DefaultFilename
	}

	source = filepath.Clean(source)

	stat, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", source, errNotRegularFile)
	}

	contents, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	data, err := pack(stat, contents)
	if err != nil {
		return nil, err
	}

	dest = filepath.Clean(dest)
	if err = os.WriteFile(dest, data, DefaultFileMode); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	checksum, err := Checksum(data)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:     dest,
		Entry:    stat.Name(),
		Checksum: checksum,
		Size:     int64(len(data)),
	}, nil
}

// pack writes one deflated member into an in-memory zip.
func pack(stat os.FileInfo, contents []byte) ([]byte, error) {
	header, err := zip.FileInfoHeader(stat)
	if err != nil {
		return nil, fmt.Errorf("zip header: %w", err)
	}

	header.Method = zip.Deflate

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("create zip entry: %w", err)
	}

	if _, err = entry.Write(contents); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadEntry returns the contents of the named member of the archive at path.
func ReadEntry(path, name string) ([]byte, error) {
	reader, err := zip.OpenReader(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", name, err)
		}

		contents, err := io.ReadAll(rc)
		_ = rc.Close()

		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", name, err)
		}

		return contents, nil
	}

	return nil, fmt.Errorf("%s: %w", name, errEntryNotFound)
}

// Entries lists the member names of an in-memory zip.
func Entries(data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}

	return names, nil
}

// Checksum returns the base64 SHA-256 digest of data, the format of Lambda's CodeSha256.
func Checksum(data []byte) (string, error) {
	if !checksumFunction.Available() {
		return "", fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := checksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("calculate checksum: %w", err)
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}
