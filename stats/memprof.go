package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/omniscale/tubemap/log"
)

// MemProfiler writes a heap profile into dir every interval.
func MemProfiler(dir string, interval time.Duration) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.Printf("[error] creating memprofile dir: %s", err)
		return
	}

	ticker := time.NewTicker(interval)
	i := 0
	for range ticker.C {
		filename := filepath.Join(dir, fmt.Sprintf("memprof-%03d.pprof", i))
		f, err := os.Create(filename)
		if err != nil {
			log.Printf("[error] creating memprofile: %s", err)
			return
		}
		pprof.WriteHeapProfile(f)
		f.Close()
		i++
	}
}
