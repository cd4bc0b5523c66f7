package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const DefaultEncodingName = "utf-8"

var currentEncoding encoding.Encoding = unicode.UTF8

func SetEncoding(name string) error {
	if strings.EqualFold(name, DefaultEncodingName) || strings.EqualFold(name, "utf8") {
		currentEncoding = unicode.UTF8
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if strings.EqualFold(cm.String(), name) {
				currentEncoding = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{DefaultEncodingName}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() encoding.Encoding {
	return currentEncoding
}

// GetDecoder returns a transformer that fails on bytes invalid in the current charset.
func GetDecoder() transform.Transformer {
	if currentEncoding == unicode.UTF8 {
		// the utf-8 decoder replaces invalid sequences with U+FFFD
		return encoding.UTF8Validator
	}
	return currentEncoding.NewDecoder()
}
