// Package prof writes CPU and heap profiles of a CLI run.
package prof

import (
	"errors"
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler owns the profile files of one run.
type Profiler struct {
	cpu     *os.File
	memPath string
}

// Start begins CPU profiling to cpuPath when it is not empty. memPath,
// when not empty, receives a heap profile on Stop.
func Start(cpuPath, memPath string) (*Profiler, error) {
	p := &Profiler{memPath: memPath}
	if cpuPath == "" {
		return p, nil
	}
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	p.cpu = f
	return p, nil
}

// Stop ends CPU profiling and writes the heap profile.
func (p *Profiler) Stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.cpu.Close())
		p.cpu = nil
	}
	if p.memPath != "" {
		errs = append(errs, writeHeap(p.memPath))
		p.memPath = ""
	}
	return errors.Join(errs...)
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
