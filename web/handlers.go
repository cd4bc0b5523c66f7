package web

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/drivers/vsif"
	"github.com/drobotk/vsif2vcd/extract"
	"github.com/drobotk/vsif2vcd/pack"
	"github.com/drobotk/vsif2vcd/pack/bvcd"
	"github.com/drobotk/vsif2vcd/status"
	"github.com/drobotk/vsif2vcd/utils"
	"github.com/drobotk/vsif2vcd/vcdtext"
	"github.com/drobotk/vsif2vcd/vfs"
	"github.com/drobotk/vsif2vcd/webutils"
)

type sceneInfo struct {
	Name    string        `json:"name"`
	Named   bool          `json:"named"`
	Entry   vsif.Entry    `json:"entry"`
	Summary *vsif.Summary `json:"summary,omitempty"`
}

type imageInfo struct {
	Name    string      `json:"name"`
	Header  vsif.Header `json:"header"`
	Names   int         `json:"names"`
	Scenes  []sceneInfo `json:"scenes"`
	Running bool        `json:"running"`
}

func HandlerAjaxImage(w http.ResponseWriter, r *http.Request) {
	img := ServerImage.Image()
	info := imageInfo{
		Name:    ServerImage.Name(),
		Header:  img.Header(),
		Names:   ServerNames.Len(),
		Scenes:  make([]sceneInfo, 0, len(img.Entries())),
		Running: extractRunning(),
	}
	for i, e := range img.Entries() {
		_, named := ServerNames.Lookup(e.CRC)
		si := sceneInfo{Name: ServerImage.EntryName(i), Named: named, Entry: e}
		if img.Version() >= 2 {
			if s, err := img.Summary(e); err == nil {
				si.Summary = s
			}
		}
		info.Scenes = append(info.Scenes, si)
	}
	webutils.WriteJson(w, info)
}

func getScene(w http.ResponseWriter, file string) (*bvcd.Scene, bool) {
	if _, ok := ServerImage.Entry(file); !ok {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Scene '%s' not found", file))
		return nil, false
	}
	inst, err := pack.GetInstanceHandler(ServerImage, file)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return inst.(*bvcd.Scene), true
}

func HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	if scene, ok := getScene(w, mux.Vars(r)["file"]); ok {
		webutils.WriteJson(w, scene)
	}
}

func HandlerVcdText(w http.ResponseWriter, r *http.Request) {
	if scene, ok := getScene(w, mux.Vars(r)["file"]); ok {
		webutils.WriteText(w, scene.Render())
	}
}

func HandlerYamlTree(w http.ResponseWriter, r *http.Request) {
	scene, ok := getScene(w, mux.Vars(r)["file"])
	if !ok {
		return
	}
	doc, err := vcdtext.Parse([]byte(scene.Render()))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteYaml(w, doc)
}

func HandlerDumpScene(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := vfs.DirectoryGetFile(ServerImage, file)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusNotFound, err)
		return
	}

	if reader, err := vfs.OpenFileAndGetReader(f); err == nil {
		defer f.Close()
		webutils.WriteFile(w, reader, path.Base(file)+".bin")
	} else {
		webutils.WriteError(w, err)
	}
}

var (
	extractLock    sync.Mutex
	extractActive  bool
	extractReport  *extract.Report
	extractLastErr error
)

func extractRunning() bool {
	extractLock.Lock()
	defer extractLock.Unlock()
	return extractActive
}

func HandlerAjaxReport(w http.ResponseWriter, r *http.Request) {
	extractLock.Lock()
	report, running, lastErr := extractReport, extractActive, extractLastErr
	extractLock.Unlock()

	type jReport struct {
		Running bool            `json:"running"`
		Error   string          `json:"error,omitempty"`
		Report  *extract.Report `json:"report,omitempty"`
	}
	res := jReport{Running: running, Report: report}
	if lastErr != nil {
		res.Error = lastErr.Error()
	}
	webutils.WriteJson(w, res)
}

func formBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.FormValue(key))
	return v
}

// HandlerActionExtract starts a background extraction into the output
// directory. Progress goes to the status websocket.
func HandlerActionExtract(w http.ResponseWriter, r *http.Request) {
	extractLock.Lock()
	if extractActive {
		extractLock.Unlock()
		webutils.WriteErrorCode(w, http.StatusConflict, errors.Errorf("Extraction already running"))
		return
	}
	extractActive = true
	extractLastErr = nil
	extractLock.Unlock()

	runID := uuid.NewString()
	opts := extract.Options{
		All:       formBool(r, "all"),
		Overwrite: formBool(r, "overwrite"),
		Verify:    formBool(r, "verify"),
		RunID:     runID,
		OnProgress: func(done, total int, path string) {
			status.Progress(runID, float32(done)/float32(total), "Extracting: %s", path)
		},
	}

	go func() {
		report, err := extract.Run(context.Background(), ServerImage.Image(), ServerNames, ServerOut, opts)
		if err != nil {
			status.Error("Extraction failed: %v", err)
		} else {
			var buf bytes.Buffer
			for _, l := range report.Stats() {
				buf.WriteString(l + "\n")
			}
			status.Info("Finished!\n%s", buf.String())
		}
		utils.LogInfof("[web] extraction %s done into %s", runID, ServerOut.Path())

		extractLock.Lock()
		extractActive = false
		extractReport = report
		extractLastErr = err
		extractLock.Unlock()
	}()

	webutils.WriteJson(w, map[string]string{"run_id": runID})
}
