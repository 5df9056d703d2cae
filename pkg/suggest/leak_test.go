//go:build test

package suggest

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var testQueries = []string{
	"r", "re", "red", "red a", "red ap", "red apple",
	"g", "gr", "green", "green b",
	"b", "bl", "blue", "blue berry", "blue berry m",
	"m", "mu", "muffin", "muffin b",
}

var fruits = []string{"apple", "banana", "berry", "cherry", "melon", "muffin", "pie", "tart"}
var colors = []string{"red", "green", "blue", "yellow", "black", "golden"}

func seededOracle() *Oracle {
	o := NewOracle()
	for i, c := range colors {
		for j, f := range fruits {
			for k, g := range fruits {
				o.Add(fmt.Sprintf("%s %s %s %d", c, f, g, i*100+j*10+k))
			}
		}
	}
	return o
}

func heapDelta(baseline, final runtime.MemStats) int64 {
	return int64(final.Alloc) - int64(baseline.Alloc)
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, iterCount := range []int{100, 500, 1000} {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			o := seededOracle()

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)
			baselineGoroutines := runtime.NumGoroutine()

			for range iterCount {
				for _, q := range testQueries {
					_ = o.Suggest(Request{Query: q, Limit: 10})
				}
			}

			var final runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&final)

			totalOps := iterCount * len(testQueries)
			memDelta := heapDelta(baseline, final)
			memPerOp := float64(memDelta) / float64(totalOps)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

			t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
				iterCount, totalOps, memDelta, memPerOp, goroutineDelta)

			if memPerOp > 1000 {
				t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	memFile, err := os.CreateTemp(t.TempDir(), "concurrent_memory-*.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer memFile.Close()

	o := seededOracle()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	var wg sync.WaitGroup
	var totalOps atomic.Int64
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 125 {
				for _, q := range testQueries {
					_ = o.Suggest(Request{Query: q, Limit: 10})
					totalOps.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	memPerOp := float64(heapDelta(baseline, final)) / float64(totalOps.Load())
	t.Logf("total_ops=%d mem_per_op=%.2f", totalOps.Load(), memPerOp)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}
	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
}

func TestMemoryStabilityLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	o := seededOracle()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	maxMemDelta := int64(0)
	for cycle := range 50 {
		for op := range 200 {
			_ = o.Suggest(Request{Query: testQueries[op%len(testQueries)], Limit: 10})
		}
		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)
			maxMemDelta = max(maxMemDelta, heapDelta(baseline, m))
			t.Logf("cycle=%d mem_delta=%d bytes", cycle, heapDelta(baseline, m))
		}
		time.Sleep(5 * time.Millisecond)
	}

	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
