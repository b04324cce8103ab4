package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var startedAt = time.Now()

// SysHealth is a snapshot of process and data directory health.
type SysHealth struct {
	Uptime       time.Duration
	HeapMB       uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string
	// Recipes is filled in by the caller; the process cannot see it.
	Recipes int
}

// GetSysHealth collects real-time health data for the process and dataPath.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		Uptime:       time.Since(startedAt).Truncate(time.Second),
		HeapMB:       m.HeapAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: humanBytes(dirSize(dataPath)),
	}
}

// Report renders the health snapshot and the usage rows as plain text lines.
func Report(h SysHealth, usage []DailyUsage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Uptime: %s\n", h.Uptime)
	fmt.Fprintf(&b, "Heap: %d MB, Sys: %d MB, GC: %d\n", h.HeapMB, h.SysMB, h.NumGC)
	fmt.Fprintf(&b, "Goroutines: %d\n", h.Goroutines)
	fmt.Fprintf(&b, "Data: %s\n", h.DataDiskSize)
	fmt.Fprintf(&b, "Recipes: %d\n", h.Recipes)
	if len(usage) == 0 {
		b.WriteString("No operations recorded.\n")
		return b.String()
	}
	for _, u := range usage {
		fmt.Fprintf(&b, "%s %s: %d runs, %d items, %.0f ms avg\n", u.Date, u.Operation, u.Runs, u.TotalItems, u.AvgLatencyMS)
	}
	return b.String()
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

func humanBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
