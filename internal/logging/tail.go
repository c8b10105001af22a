package logging

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
)

const tailBlockSize = 1024

// Tail returns up to n trailing lines of the file at path, oldest
// first. It reads fixed-size blocks backwards from the end rather than
// the whole file, since the server log grows without rotation. A
// missing file yields no lines and no error.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	var data []byte
	var offset int64 = size
	for offset > 0 && bytes.Count(data, []byte{'\n'}) <= n {
		block := int64(tailBlockSize)
		if offset < block {
			block = offset
		}
		offset -= block

		buf := make([]byte, block)
		if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, err
		}
		data = append(buf, data...)
	}

	lines := splitLines(data)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// splitLines splits on newlines, dropping a trailing empty line left by
// a final newline byte.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	raw := bytes.Split(data, []byte{'\n'})
	lines := make([]string, 0, len(raw))
	for i, l := range raw {
		if i == len(raw)-1 && len(l) == 0 {
			continue
		}
		lines = append(lines, string(bytes.TrimSuffix(l, []byte{'\r'})))
	}
	return lines
}
