// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides the number of usable CPUs, used to bound
// parallel file system checks.
package runtimex

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

var ncpu = func() int {
	n := getproccount()
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return n
}()

// NumCPU returns the number of logical CPUs usable by the current process.
// On Windows, runtime.NumCPU only counts a single processor group (up to 64),
// so GetActiveProcessorCount is used to count all processor groups.
func NumCPU() int {
	return ncpu
}

// Limit returns the number of workers to process n items in parallel.
// It is at least 1.
func Limit(n int) int {
	return max(1, min(n, ncpu))
}

// CPUInfo describes the host CPU for logging.
func CPUInfo() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "brand=%q vendor=%q ", cpuid.CPU.BrandName, cpuid.CPU.VendorString)
	fmt.Fprintf(&sb, "physicalCores=%d threadsPerCore=%d logicalCores=%d ", cpuid.CPU.PhysicalCores, cpuid.CPU.ThreadsPerCore, cpuid.CPU.LogicalCores)
	fmt.Fprintf(&sb, "usable=%d vm=%t", ncpu, cpuid.CPU.VM())
	return sb.String()
}
