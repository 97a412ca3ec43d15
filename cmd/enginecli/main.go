// Command enginecli runs the engine as a UCI-speaking subprocess on
// stdin/stdout, suitable for any UCI-compatible chess GUI.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessengine/internal/engine"
	"github.com/hailam/chessengine/internal/uci"
)

var (
	hashMB     = flag.Int("hash", 256, "transposition table size in MB")
	threads    = flag.Int("threads", 1, "number of search worker threads")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	opts := engine.DefaultEngineOptions()
	if *hashMB > 0 {
		opts.HashMB = *hashMB
	}
	if *threads > 0 {
		opts.Threads = *threads
	}

	eng := engine.NewEngine(opts, nil)

	protocol := uci.New(eng)
	protocol.Run()
}
