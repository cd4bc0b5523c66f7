package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/config"
	"github.com/drobotk/vsif2vcd/drivers/vsif"
	"github.com/drobotk/vsif2vcd/extract"
	"github.com/drobotk/vsif2vcd/names"
	"github.com/drobotk/vsif2vcd/utils"
	"github.com/drobotk/vsif2vcd/vfs"
	"github.com/drobotk/vsif2vcd/web"

	_ "github.com/drobotk/vsif2vcd/pack/bvcd"
)

const VERSION = "1.2.0"

type pathList []string

func (l *pathList) String() string     { return strings.Join(*l, ",") }
func (l *pathList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	var quiet, verbose, all, overwrite, saveNames, showVersion, verify bool
	var out, encoding, reportPath, addr string
	var workers int
	var searchPaths pathList

	flag.BoolVar(&quiet, "q", false, "Only print errors")
	flag.BoolVar(&verbose, "v", false, "Print debug logs")
	flag.BoolVar(&all, "a", false, "Extract unnamed VCDs")
	flag.BoolVar(&overwrite, "w", false, "Overwrite existing VCDs in the output directory")
	flag.BoolVar(&saveNames, "save-names", false, "Save gathered scene names to names.txt")
	flag.Var(&searchPaths, "n", "Search path for scene names in files; may also be a single file. Can be specified more than once. Directories will be searched recursively")
	flag.StringVar(&out, "o", ".", "Output directory")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.IntVar(&workers, "j", 0, "Number of records decompiled in parallel, 0 - number of cpus")
	flag.StringVar(&encoding, "encoding", config.DefaultEncodingName, "Charset of the image string pool: "+strings.Join(config.ListEncodings(), ", "))
	flag.BoolVar(&verify, "verify", false, "Parse every decompiled text before saving it")
	flag.StringVar(&reportPath, "report", "", "Write a YAML report of the run to this file")
	flag.StringVar(&addr, "serve", "", "Start the scene browser on this address instead of extracting")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] IMAGE\n\nDecompile and extract VCDs from a scenes.image file.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println(VERSION)
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	log.SetFlags(0)
	config.SetQuiet(quiet)
	config.SetVerbose(verbose)
	config.SetWorkers(workers)
	if err := config.SetEncoding(encoding); err != nil {
		log.Fatal(err)
	}

	utils.LogInfof("vsif2vcd %s\n", VERSION)

	v, err := vsif.NewVsifDriver(vfs.NewDirectoryDriverFile(imagePath), nil)
	if err != nil {
		if errors.Is(err, vsif.ErrBadMagic) {
			log.Fatalf("ERROR: %s is not a valid VSIF scenes.image file.", imagePath)
		}
		log.Fatalf("ERROR: %v", err)
	}
	img := v.Image()
	utils.LogInfof("Image version: %d", img.Version())
	utils.LogInfof("Scene count: %d", len(img.Entries()))
	utils.LogInfof("String count: %d", img.NumStrings())

	found := make(names.Set)
	if len(searchPaths) != 0 {
		utils.LogInfof("Searching for scene names")
		for _, p := range searchPaths {
			s, err := names.SearchPath(p)
			if err != nil {
				utils.LogErrorf("%v", err)
				continue
			}
			found.Merge(s)
		}
	}
	utils.LogInfof("Known scene names: %d", len(found))

	utils.LogDebugf("Calculating CRCs")
	table := names.NewTable(found)
	v.Rename(table.Name)
	outDir := vfs.NewDirectoryDriver(out)

	if addr != "" {
		if err := web.StartServer(addr, v, table, outDir); err != nil {
			log.Fatal(err)
		}
		return
	}

	if len(found) == 0 && !all {
		utils.LogInfof("No scenes will be extracted. Use `-a` to extract unnamed scenes.")
		return
	}

	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if saveNames {
		utils.LogInfof("Saving names to %s/names.txt", out)
		if err := extract.WriteNames(outDir, found); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := extract.Run(ctx, img, table, outDir, extract.Options{
		All:       all,
		Overwrite: overwrite,
		Verify:    verify,
	})
	report.Image = imagePath

	utils.LogInfof("Finished!")
	for _, l := range report.Stats() {
		utils.LogInfof("%s", l)
	}
	if len(report.Failures) != 0 {
		utils.LogInfof("Scenes that failed to decompile:")
		for _, f := range report.Failures {
			utils.LogInfof("%s", f)
		}
	}

	if reportPath != "" {
		if werr := writeReport(reportPath, report); werr != nil {
			utils.LogErrorf("%v", werr)
		}
	}

	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func writeReport(path string, report *extract.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot create report '%s'", path)
	}
	defer f.Close()
	return report.WriteYAML(f)
}
