package vcdtext

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, errors.Wrapf(err, "Failed to marshal")
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
