package sga

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(t *testing.T, v Version) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteVersion(&buf, v))
	return buf.Bytes()
}

func TestReadVersion_RoundTrip(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader(header(t, Version{Major: 2, Minor: 0}))
	v, err := ReadVersion(r, true)
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 0}, v)
}

func TestReadVersion_ByteLayout(t *testing.T) {
	t.Parallel()

	data := append([]byte("_ARCHIVE"), 0x05, 0x00, 0x01, 0x00)
	v, err := ReadVersion(bytes.NewReader(data), true)
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 5, Minor: 1}, v)
	assert.Equal(t, data, header(t, v))
}

func TestReadVersion_Cursor(t *testing.T) {
	t.Parallel()

	versions := []Version{{0, 0}, {2, 0}, {4, 1}, {9, 0}, {10, 0}, {0xFFFF, 0xFFFF}}
	prefixes := [][]byte{nil, []byte("xy"), bytes.Repeat([]byte{0}, 17)}

	for _, want := range versions {
		for _, prefix := range prefixes {
			data := append(append([]byte{}, prefix...), header(t, want)...)
			data = append(data, "trailing"...)
			start := int64(len(prefix))

			t.Run(want.String()+"/peek", func(t *testing.T) {
				r := bytes.NewReader(data)
				_, err := r.Seek(start, io.SeekStart)
				require.NoError(t, err)

				got, err := ReadVersion(r, false)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				pos, err := r.Seek(0, io.SeekCurrent)
				require.NoError(t, err)
				assert.Equal(t, start, pos)
			})

			t.Run(want.String()+"/advance", func(t *testing.T) {
				r := bytes.NewReader(data)
				_, err := r.Seek(start, io.SeekStart)
				require.NoError(t, err)

				got, err := ReadVersion(r, true)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				pos, err := r.Seek(0, io.SeekCurrent)
				require.NoError(t, err)
				assert.Equal(t, start+int64(HeaderSize), pos)
			})
		}
	}
}

func TestReadVersion_BadMagic(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"empty":          {},
		"short magic":    []byte("_ARCH"),
		"wrong magic":    append([]byte("_ARCHIVF"), 2, 0, 0, 0),
		"lowercase":      append([]byte("_archive"), 2, 0, 0, 0),
		"other format":   []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"),
		"zero bytes":     make([]byte, 32),
		"shifted header": append([]byte{' '}, []byte("_ARCHIVE\x02\x00\x00\x00")...),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			for _, advance := range []bool{true, false} {
				r := bytes.NewReader(data)
				v, err := ReadVersion(r, advance)
				require.ErrorIs(t, err, ErrFormat)
				assert.Equal(t, Version{}, v)
			}
		})
	}
}

func TestReadVersion_TruncatedRecord(t *testing.T) {
	t.Parallel()

	data := append([]byte(MagicWord), 0x02, 0x00, 0x00)
	_, err := ReadVersion(bytes.NewReader(data), true)
	require.ErrorIs(t, err, ErrFormat)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadVersion_PeekRestoresOnFailure(t *testing.T) {
	t.Parallel()

	data := []byte("not an archive at all")
	r := bytes.NewReader(data)
	_, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)

	_, err = ReadVersion(r, false)
	require.ErrorIs(t, err, ErrFormat)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
}

func TestVersion_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "v2.0", Version{Major: 2}.String())
	assert.Equal(t, "v4.1", Version{Major: 4, Minor: 1}.String())
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"v2.0", "2.0", "V2.0"} {
		v, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, Version{Major: 2}, v)
	}

	for _, in := range []string{"", "v", "v2", "v2.", "v.1", "v2.0.1", "v70000.0", "v-1.0"} {
		_, err := ParseVersion(in)
		require.ErrorIs(t, err, ErrConfiguration, in)
	}
}

func TestVersion_Compare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Version{2, 0}.Compare(Version{2, 0}))
	assert.Equal(t, -1, Version{2, 0}.Compare(Version{4, 0}))
	assert.Equal(t, 1, Version{4, 1}.Compare(Version{4, 0}))
	assert.Equal(t, 1, Version{10, 0}.Compare(Version{9, 9}))
}

func TestUnsupportedVersionError(t *testing.T) {
	t.Parallel()

	err := &UnsupportedVersionError{
		Version: Version{Major: 7},
		Known:   []Version{{Major: 2}, {Major: 5}},
	}
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "v7.0")
	assert.Contains(t, err.Error(), "v2.0, v5.0")

	empty := &UnsupportedVersionError{Version: Version{Major: 7}}
	assert.Contains(t, empty.Error(), "no plugins loaded")
}
