// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package export persists raw load generator samples
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/southcitycomputer/scc-perf/loadgen"
	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/result"
)

const (
	defaultBatchSize = 1000
	// pendingBatches is how many full batches may queue for the writer
	// before Observe blocks
	pendingBatches = 4
)

// SampleRecord is one row of the samples file
type SampleRecord struct {
	RunID       string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp   int64   `parquet:"name=ts, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Host        string  `parquet:"name=host, type=BYTE_ARRAY, convertedtype=UTF8"`
	Endpoint    string  `parquet:"name=endpoint, type=BYTE_ARRAY, convertedtype=UTF8"`
	Path        string  `parquet:"name=path, type=BYTE_ARRAY, convertedtype=UTF8"`
	Concurrency int32   `parquet:"name=concurrency, type=INT32"`
	LatencyMs   float64 `parquet:"name=latency_ms, type=DOUBLE"`
	Bytes       int64   `parquet:"name=bytes, type=INT64"`
	Success     bool    `parquet:"name=success, type=BOOLEAN"`
	ErrMsg      string  `parquet:"name=err_msg, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ParquetExporter buffers samples and writes them to a Parquet file. It
// implements loadgen.Observer. Full batches go to a single writer goroutine so
// Observe never waits on disk I/O unless the writer falls behind.
type ParquetExporter struct {
	mutex     sync.Mutex
	batchSize int
	records   []SampleRecord
	closed    bool
	closeOnce sync.Once
	batches   chan []SampleRecord
	done      chan struct{}

	// owned by the writer goroutine until done is closed
	writer  *writer.ParquetWriter
	file    source.ParquetFile
	err     error
	written atomic.Int64

	filePath    string
	runID       string
	host        string
	concurrency int32
}

// NewParquetExporter creates filePath, and its directory when missing
func NewParquetExporter(filePath string, config loadgen.Config) (*ParquetExporter, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}

	pw, err := writer.NewParquetWriter(file, new(SampleRecord), 4)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	pe := &ParquetExporter{
		writer:      pw,
		file:        file,
		filePath:    filePath,
		batchSize:   defaultBatchSize,
		records:     make([]SampleRecord, 0, defaultBatchSize),
		batches:     make(chan []SampleRecord, pendingBatches),
		done:        make(chan struct{}),
		runID:       result.NewRunID(),
		host:        config.Host,
		concurrency: int32(config.Concurrency),
	}
	go pe.writeLoop()
	return pe, nil
}

// Observe buffers the sample and queues a full batch for the writer. A write
// error is kept and returned by Close.
func (pe *ParquetExporter) Observe(s loadgen.Sample) {
	record := SampleRecord{
		RunID:       pe.runID,
		Timestamp:   s.Start.UnixMilli(),
		Host:        pe.host,
		Endpoint:    s.Endpoint,
		Path:        s.Path,
		Concurrency: pe.concurrency,
		LatencyMs:   float64(s.Latency) / float64(time.Millisecond),
		Bytes:       int64(s.Bytes),
		Success:     s.Err == nil,
	}
	if s.Err != nil {
		record.ErrMsg = s.Err.Error()
	}

	pe.mutex.Lock()
	defer pe.mutex.Unlock()
	if pe.closed {
		return
	}
	pe.records = append(pe.records, record)
	if len(pe.records) >= pe.batchSize {
		pe.batches <- pe.records
		pe.records = make([]SampleRecord, 0, pe.batchSize)
	}
}

// writeLoop writes queued batches until the channel is closed. After the first
// write error the remaining batches are drained and dropped.
func (pe *ParquetExporter) writeLoop() {
	defer close(pe.done)
	for batch := range pe.batches {
		if pe.err != nil {
			continue
		}
		for _, record := range batch {
			if err := pe.writer.Write(record); err != nil {
				pe.err = fmt.Errorf("failed to write sample: %w", err)
				log.Warnf("parquet export disabled: %s", err)
				break
			}
			pe.written.Add(1)
		}
	}
}

// Close hands over the remaining samples, waits for the writer and closes the
// file. Samples observed after Close are dropped.
func (pe *ParquetExporter) Close() error {
	pe.closeOnce.Do(func() {
		pe.mutex.Lock()
		pe.closed = true
		if len(pe.records) > 0 {
			pe.batches <- pe.records
			pe.records = nil
		}
		close(pe.batches)
		pe.mutex.Unlock()

		<-pe.done
		if err := pe.writer.WriteStop(); err != nil && pe.err == nil {
			pe.err = fmt.Errorf("failed to stop parquet writer: %w", err)
		}
		if err := pe.file.Close(); err != nil && pe.err == nil {
			pe.err = fmt.Errorf("failed to close parquet file: %w", err)
		}
	})
	return pe.err
}

// Written returns the number of samples written so far
func (pe *ParquetExporter) Written() int {
	return int(pe.written.Load())
}

// FilePath returns the path of the written file
func (pe *ParquetExporter) FilePath() string {
	return pe.filePath
}

// RunID identifies the samples of this run in the file
func (pe *ParquetExporter) RunID() string {
	return pe.runID
}
