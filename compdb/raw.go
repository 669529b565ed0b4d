// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/compdb/intercept"
)

// WriteRaw writes records to w as a JSON array, without classification.
// Errors in records are logged and skipped.
// It returns the number of records written.
func WriteRaw(w io.Writer, records iter.Seq2[intercept.Record, error]) (int, error) {
	bw := bufio.NewWriter(w)
	_, err := bw.WriteString("[")
	if err != nil {
		return 0, err
	}
	n := 0
	for rec, err := range records {
		if err != nil {
			log.Warnf("skip trace: %v", err)
			continue
		}
		if n > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  ")
		buf, err := json.Marshal(rec)
		if err != nil {
			return n, err
		}
		_, err = bw.Write(buf)
		if err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		bw.WriteString("\n")
	}
	_, err = bw.WriteString("]\n")
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// WriteRawFile writes records to fname by WriteRaw.
// If fname has ".zst" suffix, it is compressed by zstd.
func WriteRawFile(ctx context.Context, fname string, records iter.Seq2[intercept.Record, error]) (int, error) {
	var n int
	err := withLockedFile(ctx, fname, func(f *os.File) error {
		err := f.Truncate(0)
		if err != nil {
			return err
		}
		var w io.Writer = f
		var zw *zstd.Encoder
		if strings.HasSuffix(fname, ".zst") {
			zw, err = zstd.NewWriter(f)
			if err != nil {
				return err
			}
			w = zw
		}
		n, err = WriteRaw(w, records)
		if err != nil {
			if zw != nil {
				zw.Close()
			}
			return err
		}
		if zw != nil {
			err = zw.Close()
			if err != nil {
				return err
			}
		}
		return f.Sync()
	})
	return n, err
}
