package config

import "runtime"

var (
	quiet   bool
	verbose bool
	workers = runtime.NumCPU()
)

func SetQuiet(v bool)   { quiet = v }
func GetQuiet() bool    { return quiet }
func SetVerbose(v bool) { verbose = v }
func GetVerbose() bool  { return verbose }

// SetWorkers sets the number of records decoded in parallel; values < 1 mean NumCPU.
func SetWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	workers = n
}

func GetWorkers() int { return workers }
