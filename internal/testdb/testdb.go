// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package testdb hands tests migrated database copies without paying the
// migration cost per test.
package testdb

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/autobrr/sportarr/internal/database"
)

type template struct {
	once sync.Once
	path string
	err  error
}

var (
	mu        sync.Mutex
	templates = make(map[string]*template)
)

// PathFromTemplate returns a fresh database file path for a test. The first
// call per key runs the full migrations into a template database; every call
// clones that template into the test's temp dir.
func PathFromTemplate(t *testing.T, key, filename string) string {
	t.Helper()

	tmpl := templateFor(key)
	tmpl.once.Do(func() {
		tmpl.path, tmpl.err = migrateTemplate(key)
	})
	if tmpl.err != nil {
		t.Fatalf("prepare template database %q: %v", key, tmpl.err)
	}

	dbPath := filepath.Join(t.TempDir(), filename)
	if err := clone(tmpl.path, dbPath); err != nil {
		t.Fatalf("clone template database %q: %v", key, err)
	}
	return dbPath
}

func templateFor(key string) *template {
	mu.Lock()
	defer mu.Unlock()

	tmpl, ok := templates[key]
	if !ok {
		tmpl = &template{}
		templates[key] = tmpl
	}
	return tmpl
}

func migrateTemplate(key string) (string, error) {
	dir, err := os.MkdirTemp("", "sportarr-testdb-"+key+"-")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "template.db")
	db, err := database.New(path)
	if err != nil {
		return "", err
	}
	return path, db.Close()
}

// clone copies the main database file plus the WAL sidecar files when the
// template still carries them.
func clone(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + suffix); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := copyFile(src+suffix, dst+suffix); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
