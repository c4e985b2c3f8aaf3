package export

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/southcitycomputer/scc-perf/loadgen"
)

func readBack(t *testing.T, path string) []SampleRecord {
	t.Helper()
	file, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer file.Close()

	pr, err := reader.NewParquetReader(file, new(SampleRecord), 2)
	require.NoError(t, err)
	defer pr.ReadStop()

	records := make([]SampleRecord, pr.GetNumRows())
	require.NoError(t, pr.Read(&records))
	return records
}

func TestParquetExporter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "samples.parquet")
	config := loadgen.DefaultConfig()
	config.Host = "127.0.0.1:9000"

	exporter, err := NewParquetExporter(path, config)
	require.NoError(t, err)
	exporter.batchSize = 7

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				exporter.Observe(loadgen.Sample{
					Endpoint: "Homepage",
					Path:     "/",
					Start:    time.Now(),
					Latency:  1500 * time.Microsecond,
					Bytes:    2048,
				})
			}
		}()
	}
	wg.Wait()
	exporter.Observe(loadgen.Sample{Endpoint: "Homepage", Path: "/", Start: time.Now(), Err: errors.New("connect failed: refused")})
	require.NoError(t, exporter.Close())
	assert.Equal(t, 101, exporter.Written())

	records := readBack(t, path)
	require.Len(t, records, 101)

	failures := 0
	for _, r := range records {
		assert.Equal(t, exporter.RunID(), r.RunID)
		assert.Equal(t, "127.0.0.1:9000", r.Host)
		assert.Equal(t, int32(10), r.Concurrency)
		if !r.Success {
			failures++
			assert.Equal(t, "connect failed: refused", r.ErrMsg)
			continue
		}
		assert.InDelta(t, 1.5, r.LatencyMs, 1e-9)
		assert.Equal(t, int64(2048), r.Bytes)
	}
	assert.Equal(t, 1, failures)
}

func TestParquetExporter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	exporter, err := NewParquetExporter(path, loadgen.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, exporter.Close())
	assert.Equal(t, path, exporter.FilePath())
	assert.Empty(t, readBack(t, path))
}

func TestParquetExporter_ConcurrentBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.parquet")
	exporter, err := NewParquetExporter(path, loadgen.DefaultConfig())
	require.NoError(t, err)

	const workers, perWorker = 10, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				exporter.Observe(loadgen.Sample{Endpoint: "Homepage", Path: "/", Start: time.Now(), Latency: time.Millisecond})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, exporter.Close())

	assert.Equal(t, workers*perWorker, exporter.Written())
	assert.Len(t, readBack(t, path), workers*perWorker)
}

func TestParquetExporter_ObserveAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.parquet")
	exporter, err := NewParquetExporter(path, loadgen.DefaultConfig())
	require.NoError(t, err)
	exporter.batchSize = 2

	exporter.Observe(loadgen.Sample{Endpoint: "Homepage", Path: "/", Start: time.Now()})
	require.NoError(t, exporter.Close())
	exporter.Observe(loadgen.Sample{Endpoint: "Homepage", Path: "/", Start: time.Now()})
	exporter.Observe(loadgen.Sample{Endpoint: "Homepage", Path: "/", Start: time.Now()})
	require.NoError(t, exporter.Close())

	assert.Equal(t, 1, exporter.Written())
	assert.Len(t, readBack(t, path), 1)
}
