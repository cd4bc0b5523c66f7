package utils

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/drobotk/vsif2vcd/config"
)

// BytesToString decodes bytes up to the first NUL using the configured charset.
// Bytes that are not valid in the charset are an error.
func BytesToString(bs []byte) (string, error) {
	n := BytesStringLength(bs)

	s, _, err := transform.Bytes(config.GetDecoder(), bs[0:n])
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode %q", DumpToOneLineString(bs[0:n]))
	}

	return string(s), nil
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

// FormatFraction renders "a/b (p%)" for run statistics.
func FormatFraction(a, b int) string {
	if b == 0 {
		return fmt.Sprintf("%d/%d (0.00%%)", a, b)
	}
	return fmt.Sprintf("%d/%d (%.2f%%)", a, b, float64(a)/float64(b)*100)
}
