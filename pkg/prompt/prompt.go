// Package prompt reads generation prompts from stored objects.
package prompt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hello-bedrock/promptimage/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read returns the full content of r as UTF-8 text. The text is not trimmed:
// trailing whitespace and newlines are part of the prompt. A leading byte
// order mark is dropped and invalid sequences become U+FFFD. If limit is
// positive, content longer than limit bytes is rejected.
func Read(r io.Reader, limit int64) (string, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", errors.Wrap(err, "failed to read prompt")
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: prompt exceeds %d bytes", errors.ErrLimitExceeded, limit)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "�"), nil
}
