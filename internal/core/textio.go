package core

// textio.go reads uploaded files into memory as UTF-8 text.
//
// Files exported from Windows spreadsheet tools often start with a UTF-8 BOM
// and occasionally carry stray non-UTF-8 bytes. The decoder strips the BOM
// and replaces ill-formed sequences with U+FFFD so the parser only ever sees
// valid UTF-8.

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadText reads all of r as UTF-8 text. A maxSize > 0 caps the number of
// raw bytes accepted; larger inputs fail with ErrFileTooLarge.
func ReadText(r io.Reader, maxSize int64) (string, error) {
	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}

	counted := &countingReader{r: src}
	decoded := transform.NewReader(counted, unicode.UTF8BOM.NewDecoder())

	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	if maxSize > 0 && counted.n > maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}

	return string(data), nil
}

// countingReader tracks raw bytes read before decoding.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
