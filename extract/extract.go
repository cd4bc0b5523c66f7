package extract

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/drobotk/vsif2vcd/config"
	"github.com/drobotk/vsif2vcd/drivers/vsif"
	"github.com/drobotk/vsif2vcd/names"
	"github.com/drobotk/vsif2vcd/pack/bvcd"
	"github.com/drobotk/vsif2vcd/utils"
	"github.com/drobotk/vsif2vcd/vcdtext"
	"github.com/drobotk/vsif2vcd/vfs"
)

// ResourceError aborts the whole run.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("[extract] cannot write '%s': %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

var ErrVerify = errors.New("text verification failed")

type Options struct {
	// All extracts records with no known name as scenes/0x<crc>.vcd
	All       bool
	Overwrite bool
	// Verify parses every produced text before it is written
	Verify bool
	// OnProgress is called after each record, from worker goroutines
	OnProgress func(done, total int, path string)
	// RunID names the run in the report, a new one is generated if empty
	RunID string
}

type runner struct {
	img  *vsif.Image
	out  vfs.Output
	opts Options

	lock   sync.Mutex
	report *Report
	done   int

	// last job started for each output path, used by the dispatch loop only
	pending map[string]chan struct{}
}

func (r *runner) progress(path string) {
	r.done++
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(r.done, r.report.Scenes, path)
	}
}

func (r *runner) skip(path string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.report.Skipped++
	r.progress(path)
}

func (r *runner) fail(e vsif.Entry, path string, err error) {
	utils.LogErrorf("%s: %v", path, err)
	r.lock.Lock()
	defer r.lock.Unlock()
	r.report.Failures = append(r.report.Failures, Failure{
		Index: e.Index, CRC: e.CRC, Path: path, Kind: classify(err), Error: err.Error()})
	r.progress(path)
}

// classify names the stage a record failed at
func classify(err error) string {
	var serr *bvcd.StructuralError
	var cerr *vsif.CompressionError
	switch {
	case errors.As(err, &cerr):
		return FAILURE_COMPRESSION
	case errors.As(err, &serr):
		return FAILURE_STRUCTURAL
	case errors.Is(err, ErrVerify):
		return FAILURE_VERIFY
	case errors.Is(err, vsif.ErrTruncated):
		return FAILURE_TRUNCATED
	}
	return FAILURE_OTHER
}

// Decompile decodes one record of the image into text.
func Decompile(img *vsif.Image, e vsif.Entry) (*bvcd.Scene, string, error) {
	raw, err := img.RecordData(e)
	if err != nil {
		return nil, "", err
	}
	if vsif.IsCompressed(raw) {
		utils.LogDebugf("Decompressing LZMA")
	}
	data, err := vsif.Unwrap(raw)
	if err != nil {
		return nil, "", err
	}
	scene, err := bvcd.Decode(img, data)
	if err != nil {
		return nil, "", err
	}
	return scene, scene.Render(), nil
}

func verify(scene *bvcd.Scene, text string) error {
	doc, err := vcdtext.Parse([]byte(text))
	if err != nil {
		return errors.Wrapf(ErrVerify, "%v", err)
	}
	if got, want := doc.Count("event"), scene.NumEvents(); got != want {
		return errors.Wrapf(ErrVerify, "%d events in text, %d decoded", got, want)
	}
	return nil
}

func (r *runner) extractOne(e vsif.Entry, path string, named bool) error {
	utils.LogInfof("Extracting: %s", path)

	scene, text, err := Decompile(r.img, e)
	if err != nil {
		r.fail(e, path, err)
		return nil
	}
	if r.opts.Verify {
		if err := verify(scene, text); err != nil {
			r.fail(e, path, err)
			return nil
		}
	}

	utils.LogDebugf("Saving to file")
	if err := r.out.WriteFile(path, []byte(text)); err != nil {
		return &ResourceError{Path: path, Err: err}
	}

	output := Output{Index: e.Index, CRC: e.CRC, Path: path, Named: named}
	if r.img.Version() >= 2 {
		if s, err := r.img.Summary(e); err != nil {
			utils.LogDebugf("%s: summary: %v", path, err)
		} else {
			output.Msecs = s.Msecs
			output.Sounds = s.Sounds
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	for _, w := range scene.Warnings {
		utils.LogInfof("Warning: %s: %v", path, w)
		r.report.Warnings = append(r.report.Warnings, Failure{
			Index: e.Index, CRC: e.CRC, Path: path, Kind: FAILURE_WARNING, Error: w.Error()})
	}
	r.report.Decompiled++
	r.report.Outputs = append(r.report.Outputs, output)
	r.progress(path)
	return nil
}

// Run decompiles the records of img into out. Per record failures are
// collected in the report; only output errors stop the run early.
// The report is returned even when err is not nil.
func Run(ctx context.Context, img *vsif.Image, table *names.Table, out vfs.Output, opts Options) (*Report, error) {
	r := &runner{
		img:     img,
		out:     out,
		opts:    opts,
		report:  newReport(img.Version(), len(img.Entries()), table.Len()),
		pending: make(map[string]chan struct{}),
	}
	if opts.RunID != "" {
		r.report.RunID = opts.RunID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.GetWorkers())

	for _, e := range img.Entries() {
		if gctx.Err() != nil {
			break
		}

		path, named, ok := table.Path(e.CRC, opts.All)
		if named {
			r.lock.Lock()
			r.report.Named++
			r.lock.Unlock()
		}
		if !ok {
			r.skip(names.UnnamedPath(e.CRC))
			continue
		}
		if !opts.Overwrite && out.Exists(path) {
			r.skip(path)
			continue
		}

		// records sharing an output path are written in directory order
		prev := r.pending[path]
		done := make(chan struct{})
		r.pending[path] = done

		e := e
		g.Go(func() error {
			defer close(done)
			if prev != nil {
				select {
				case <-prev:
				case <-gctx.Done():
					return nil
				}
				if !opts.Overwrite && out.Exists(path) {
					r.skip(path)
					return nil
				}
			}
			if gctx.Err() != nil {
				return nil
			}
			return r.extractOne(e, path, named)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	r.report.finish()
	return r.report, err
}

// WriteNames stores the gathered names as names.txt in out.
func WriteNames(out vfs.Output, s names.Set) error {
	var buf bytes.Buffer
	if err := names.WriteList(&buf, s); err != nil {
		return err
	}
	if err := out.WriteFile("names.txt", buf.Bytes()); err != nil {
		return &ResourceError{Path: "names.txt", Err: err}
	}
	return nil
}
