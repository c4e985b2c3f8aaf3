// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package report renders benchmark and diagnostics results as boxed text or JSON
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/southcitycomputer/scc-perf/common"
)

// FormatBytes uses decimal units: 999 B, 1.50 KB, 2.50 MB, 1.00 GB
func FormatBytes(bytes uint64) string {
	switch {
	case bytes >= 1_000_000_000:
		return fmt.Sprintf("%.2f GB", float64(bytes)/1e9)
	case bytes >= 1_000_000:
		return fmt.Sprintf("%.2f MB", float64(bytes)/1e6)
	case bytes >= 1_000:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1e3)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatLatency renders d in μs below 1ms, ms below 1s, and s above
func FormatLatency(d time.Duration) string {
	us := d.Microseconds()
	switch {
	case us >= 1_000_000:
		return fmt.Sprintf("%.2fs", float64(us)/1e6)
	case us >= 1_000:
		return fmt.Sprintf("%.2fms", float64(us)/1e3)
	default:
		return fmt.Sprintf("%dμs", us)
	}
}

// Rating is a five star grade of a duration
type Rating struct {
	Stars string
	Label string
	Note  string
}

var pageLoadRatings = []Rating{
	{"★★★★★", "EXCELLENT", "<100ms full page"},
	{"★★★★☆", "VERY GOOD", "<500ms full page"},
	{"★★★☆☆", "GOOD", "<1s full page"},
	{"★★☆☆☆", "ACCEPTABLE", "<2.5s Core Web Vitals"},
	{"★☆☆☆☆", "NEEDS IMPROVEMENT", ">2.5s"},
}

var measurementRatings = []Rating{
	{"★★★★★", "EXCELLENT", "Sub-100ms response!"},
	{"★★★★☆", "VERY GOOD", "Fast response time"},
	{"★★★☆☆", "GOOD", "Acceptable performance"},
	{"★★☆☆☆", "FAIR", "Could be improved"},
	{"★☆☆☆☆", "SLOW", "Needs optimization"},
}

func rate(d time.Duration, bands []time.Duration, ratings []Rating) Rating {
	for i, band := range bands {
		if d < band {
			return ratings[i]
		}
	}
	return ratings[len(ratings)-1]
}

// PageLoadRating grades a full page load
func PageLoadRating(d time.Duration) Rating {
	return rate(d, common.PageLoadRatingBands, pageLoadRatings)
}

// MeasurementRating grades the total time of a single measurement
func MeasurementRating(totalMs float64) Rating {
	return rate(time.Duration(totalMs*float64(time.Millisecond)), common.MeasurementRatingBands, measurementRatings)
}

// JSON writes v as indented JSON followed by a newline
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
