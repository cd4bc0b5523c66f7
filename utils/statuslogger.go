package utils

import (
	"log"

	"github.com/drobotk/vsif2vcd/config"
)

// LogInfof prints progress messages unless quiet mode is on.
func LogInfof(format string, a ...interface{}) {
	if !config.GetQuiet() {
		log.Printf(format, a...)
	}
}

func LogDebugf(format string, a ...interface{}) {
	if config.GetVerbose() && !config.GetQuiet() {
		log.Printf("DEBUG: "+format, a...)
	}
}

func LogErrorf(format string, a ...interface{}) {
	log.Printf("ERROR: "+format, a...)
}
