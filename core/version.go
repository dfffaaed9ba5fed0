package sga

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MagicWord is the signature at the start of every SGA archive header.
const MagicWord = "_ARCHIVE"

// versionSize is the encoded size of the version record: two uint16 fields.
const versionSize = 4

// HeaderSize is the number of bytes consumed by ReadVersion in advance mode.
const HeaderSize = len(MagicWord) + versionSize

// Version identifies the layout revision of an archive.
type Version struct {
	Major uint16
	Minor uint16
}

// String returns the canonical form "v{major}.{minor}".
// It doubles as the plugin registry key.
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Compare orders versions by major, then minor.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, o.Minor)
}

// ParseVersion parses the canonical form produced by Version.String.
// The leading "v" is optional.
func ParseVersion(s string) (Version, error) {
	in := strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	majorStr, minorStr, ok := strings.Cut(in, ".")
	if !ok {
		return Version{}, fmt.Errorf("%w: malformed version %q", ErrConfiguration, s)
	}
	major, err := strconv.ParseUint(majorStr, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("%w: malformed major in %q", ErrConfiguration, s)
	}
	minor, err := strconv.ParseUint(minorStr, 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("%w: malformed minor in %q", ErrConfiguration, s)
	}
	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// ReadVersion validates the magic word and reads the version record.
//
// When advance is true the stream is left positioned just past the version
// record. When advance is false the stream is seeked back to the position it
// held before the call, on success and on failure alike.
//
// Errors returned for a bad signature or a truncated header match ErrFormat.
func ReadVersion(r io.ReadSeeker, advance bool) (v Version, err error) {
	if !advance {
		start, serr := r.Seek(0, io.SeekCurrent)
		if serr != nil {
			return Version{}, fmt.Errorf("sga: record stream position: %w", serr)
		}
		defer func() {
			if _, serr := r.Seek(start, io.SeekStart); serr != nil && err == nil {
				v, err = Version{}, fmt.Errorf("sga: restore stream position: %w", serr)
			}
		}()
	}

	var magic [len(MagicWord)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Version{}, fmt.Errorf("%w: reading magic word: %w", ErrFormat, shortRead(err))
	}
	if !bytes.Equal(magic[:], []byte(MagicWord)) {
		return Version{}, fmt.Errorf("%w: magic word mismatch: got %q, want %q", ErrFormat, magic[:], MagicWord)
	}

	var rec [versionSize]byte
	if _, err := io.ReadFull(r, rec[:]); err != nil {
		return Version{}, fmt.Errorf("%w: reading version record: %w", ErrFormat, shortRead(err))
	}
	return Version{
		Major: binary.LittleEndian.Uint16(rec[0:2]),
		Minor: binary.LittleEndian.Uint16(rec[2:4]),
	}, nil
}

// WriteVersion writes the magic word followed by the version record.
func WriteVersion(w io.Writer, v Version) error {
	var buf [HeaderSize]byte
	copy(buf[:], MagicWord)
	binary.LittleEndian.PutUint16(buf[len(MagicWord):], v.Major)
	binary.LittleEndian.PutUint16(buf[len(MagicWord)+2:], v.Minor)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("sga: write header: %w", err)
	}
	return nil
}

// shortRead normalizes a clean EOF into io.ErrUnexpectedEOF; a header that
// ends early is always truncated, never merely empty.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
