package commands

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// startProfiling profiles the CPU into cpuProfPath until the returned func is called
func startProfiling(cpuProfPath string) (func(), error) {
	if cpuProfPath == "" {
		return func() {}, nil
	}
	f, err := os.Create(cpuProfPath)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func writeMemProfile(memProfPath string) error {
	if memProfPath == "" {
		return nil
	}
	f, err := os.Create(memProfPath)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}
