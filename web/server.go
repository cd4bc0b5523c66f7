package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/drobotk/vsif2vcd/drivers/vsif"
	"github.com/drobotk/vsif2vcd/names"
	"github.com/drobotk/vsif2vcd/status"
	"github.com/drobotk/vsif2vcd/vfs"
)

var (
	ServerImage *vsif.Vsif
	ServerNames *names.Table
	ServerOut   *vfs.DirectoryDriver
)

func NewRouter(v *vsif.Vsif, table *names.Table, out *vfs.DirectoryDriver) *mux.Router {
	ServerImage = v
	ServerNames = table
	ServerOut = out

	r := mux.NewRouter()
	r.HandleFunc("/json/image", HandlerAjaxImage).Methods("GET")
	r.HandleFunc("/json/scene/{file:.+}", HandlerAjaxScene).Methods("GET")
	r.HandleFunc("/json/report", HandlerAjaxReport).Methods("GET")
	r.HandleFunc("/vcd/{file:.+}", HandlerVcdText).Methods("GET")
	r.HandleFunc("/yaml/scene/{file:.+}", HandlerYamlTree).Methods("GET")
	r.HandleFunc("/dump/scene/{file:.+}", HandlerDumpScene).Methods("GET")
	r.HandleFunc("/action/extract", HandlerActionExtract).Methods("POST")
	r.HandleFunc("/ws/status", status.HandlerWebsocket)
	return r
}

func StartServer(addr string, v *vsif.Vsif, table *names.Table, out *vfs.DirectoryDriver) error {
	r := NewRouter(v, table, out)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
