// Package bcfile implements Pusl's on-disk bytecode container: a small
// framing header (magic, major/minor version) wrapped around a
// gob-encoded compiler.ByteCodeFile, per spec.md §6's `compile`/`run`
// split between producing a bytecode file and later executing one.
//
// Grounded on the teacher's file package (file/file.go's FileObject: a
// stateful handle wrapper around an os.File, opened/closed through a
// small fixed set of named operations), repurposed here from runtime OS
// file I/O — a GoMix builtin with no equivalent in Pusl's own language
// surface — into a compiler/VM-internal serialization collaborator: a
// Write/Read pair around encoding/gob rather than fopen/fread/fwrite.
package bcfile

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/pusl-lang/pusl/compiler"
)

// magic identifies a Pusl bytecode file; checked verbatim on read.
var magic = [4]byte{'p', 'u', 's', 'l'}

// MajorVersion must match exactly between writer and reader. MinorVersion
// may be read by any interpreter whose own MinorVersion is the same or
// newer (spec.md §6 "u16 minor (<= interpreter's)").
const (
	MajorVersion uint16 = 1
	MinorVersion uint16 = 0
)

// ErrBadMagic is returned by Read when the file does not start with the
// expected 4-byte magic.
var ErrBadMagic = fmt.Errorf("bcfile: not a pusl bytecode file")

// ErrMajorMismatch is returned by Read when the file's major version does
// not exactly match MajorVersion.
type ErrMajorMismatch struct {
	Got uint16
}

func (e *ErrMajorMismatch) Error() string {
	return fmt.Sprintf("bcfile: incompatible major version %d (interpreter is %d)", e.Got, MajorVersion)
}

// ErrMinorTooNew is returned by Read when the file's minor version is
// newer than this interpreter's own.
type ErrMinorTooNew struct {
	Got uint16
}

func (e *ErrMinorTooNew) Error() string {
	return fmt.Sprintf("bcfile: file requires minor version %d, interpreter only supports up to %d", e.Got, MinorVersion)
}

// Write frames bcf behind bcfile's header and gob-encodes it to w.
func Write(w io.Writer, bcf *compiler.ByteCodeFile) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(bcf); err != nil {
		return fmt.Errorf("bcfile: encode: %w", err)
	}

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, MajorVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, MinorVersion); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// WriteFile is Write's path-based convenience wrapper.
func WriteFile(path string, bcf *compiler.ByteCodeFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bcfile: %w", err)
	}
	defer f.Close()
	return Write(f, bcf)
}

// Read validates the header and gob-decodes the ByteCodeFile that
// follows it.
func Read(r io.Reader) (*compiler.ByteCodeFile, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, fmt.Errorf("bcfile: %w", err)
	}
	if got != magic {
		return nil, ErrBadMagic
	}

	var major, minor uint16
	if err := binary.Read(r, binary.BigEndian, &major); err != nil {
		return nil, fmt.Errorf("bcfile: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &minor); err != nil {
		return nil, fmt.Errorf("bcfile: %w", err)
	}
	if major != MajorVersion {
		return nil, &ErrMajorMismatch{Got: major}
	}
	if minor > MinorVersion {
		return nil, &ErrMinorTooNew{Got: minor}
	}

	var bcf compiler.ByteCodeFile
	if err := gob.NewDecoder(r).Decode(&bcf); err != nil {
		return nil, fmt.Errorf("bcfile: decode: %w", err)
	}
	return &bcf, nil
}

// ReadFile is Read's path-based convenience wrapper.
func ReadFile(path string) (*compiler.ByteCodeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bcfile: %w", err)
	}
	defer f.Close()
	return Read(f)
}
