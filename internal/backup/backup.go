// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and restores zstd-compressed JSON snapshots of the
// full webring data set: sites, submissions and analytics counters.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
)

// Export snapshots all data from the store.
func Export(st db.Store) (*model.BackupData, error) {
	return st.ExportDataForBackup()
}

// Write writes compressed JSON backup data to w.
func Write(ctx context.Context, data *model.BackupData, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	defer func() { _ = zw.Close() }()
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return zw.Close()
}

// Restore reads a zstd-compressed JSON backup and imports it via the Store.
// The import is a full wipe-and-replace.
func Restore(ctx context.Context, r io.Reader, st db.Store) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	return st.ImportDataFromBackup(&data)
}

// Migrate exports from the source store and imports into a freshly opened
// target store, moving the whole ring between storage engines.
func Migrate(ctx context.Context, st db.Store, targetType, targetDSN string) error {
	data, err := st.ExportDataForBackup()
	if err != nil {
		return fmt.Errorf("export backup: %w", err)
	}
	targetStore, err := db.NewStoreFromDSN(targetType, targetDSN)
	if err != nil {
		return fmt.Errorf("init target store: %w", err)
	}
	if err := targetStore.ImportDataFromBackup(data); err != nil {
		return fmt.Errorf("import to target: %w", err)
	}
	return nil
}
