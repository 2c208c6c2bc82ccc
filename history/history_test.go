// Copyright (c) 2026, The Mantle Authors
// See LICENSE for licensing information

package history

import (
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "history")

	want := []string{"echo hi", "ls | wc -l", "cd /tmp"}
	c.Assert(Save(path, want), qt.IsNil)

	got, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, want)
}

func TestLoadMissingFileIsEmptyNotError(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "does-not-exist")
	got, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.IsNil)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "history")
	c.Assert(Save(path, []string{"a", "", "b"}), qt.IsNil)
	got, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"a", "b"})
}
