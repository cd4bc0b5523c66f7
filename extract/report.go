package extract

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/drobotk/vsif2vcd/utils"
)

type Output struct {
	Index  int      `yaml:"index" json:"index"`
	CRC    uint32   `yaml:"crc" json:"crc"`
	Path   string   `yaml:"path" json:"path"`
	Named  bool     `yaml:"named" json:"named"`
	Msecs  uint32   `yaml:"msecs,omitempty" json:"msecs,omitempty"`
	Sounds []string `yaml:"sounds,omitempty" json:"sounds,omitempty"`
}

const (
	FAILURE_COMPRESSION = "compression"
	FAILURE_STRUCTURAL  = "structural"
	FAILURE_TRUNCATED   = "truncated"
	FAILURE_VERIFY      = "verify"
	FAILURE_OTHER       = "other"
	FAILURE_WARNING     = "warning"
)

// Failure describes a record that produced no output, or a warning
// raised while decoding one that did.
type Failure struct {
	Index int    `yaml:"index" json:"index"`
	CRC   uint32 `yaml:"crc" json:"crc"`
	Path  string `yaml:"path" json:"path"`
	Kind  string `yaml:"kind" json:"kind"`
	Error string `yaml:"error" json:"error"`
}

type Report struct {
	RunID    string    `yaml:"run_id" json:"run_id"`
	Image    string    `yaml:"image,omitempty" json:"image,omitempty"`
	Version  uint32    `yaml:"version" json:"version"`
	Started  time.Time `yaml:"started" json:"started"`
	Duration string    `yaml:"duration" json:"duration"`

	Scenes     int `yaml:"scenes" json:"scenes"`
	Names      int `yaml:"names" json:"names"`
	Decompiled int `yaml:"decompiled" json:"decompiled"`
	Skipped    int `yaml:"skipped" json:"skipped"`
	Named      int `yaml:"named" json:"named"`

	Outputs  []Output  `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Warnings []Failure `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Failures []Failure `yaml:"failures,omitempty" json:"failures,omitempty"`
}

func newReport(version uint32, scenes, names int) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Version: version,
		Started: time.Now(),
		Scenes:  scenes,
		Names:   names,
	}
}

func (r *Report) finish() {
	r.Duration = time.Since(r.Started).Round(time.Millisecond).String()
	sort.Slice(r.Outputs, func(i, j int) bool { return r.Outputs[i].Index < r.Outputs[j].Index })
	sort.Slice(r.Warnings, func(i, j int) bool { return r.Warnings[i].Index < r.Warnings[j].Index })
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Index < r.Failures[j].Index })
}

// Stats returns the end of run summary lines.
func (r *Report) Stats() []string {
	lines := []string{
		"Decompiled: " + utils.FormatFraction(r.Decompiled, r.Scenes),
		"Skipped: " + utils.FormatFraction(r.Skipped, r.Scenes),
		"Failed: " + utils.FormatFraction(len(r.Failures), r.Scenes),
	}
	if r.Names != 0 {
		lines = append(lines,
			"Named: "+utils.FormatFraction(r.Named, r.Scenes),
			"Names used: "+utils.FormatFraction(r.Named, r.Names))
	}
	return lines
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrapf(err, "[extract] Failed to marshal report")
	}
	return enc.Close()
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (#%d, crc 0x%x, %s): %s", f.Path, f.Index, f.CRC, f.Kind, f.Error)
}
