package httpshare

import (
	"testing"

	"github.com/macos-fuse-t/go-smb1/internal/share"
)

func testManifest() *Manifest {
	return &Manifest{Entries: []ManifestEntry{
		{Path: "movies/clip.mp4", Size: 4, URL: "http://example.invalid/clip.mp4"},
		{Path: "movies/other.mkv", Size: 8, URL: "http://example.invalid/other.mkv"},
	}}
}

func TestTreeOpenAndClose(t *testing.T) {
	tr := newTree(New("SHARE", testManifest()), &share.Session{User: "alice"})

	f, err := tr.Open("movies/clip.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.Name() != "clip.mp4" {
		t.Errorf("Name() = %q, want clip.mp4", f.Name())
	}
	if f.Size() != 4 {
		t.Errorf("Size() = %d, want 4", f.Size())
	}

	fid := f.FID()
	if got, ok := tr.GetFile(fid); !ok || got != f {
		t.Fatalf("GetFile(%d) did not return the bound file", fid)
	}

	if err := tr.CloseFile(fid); err != nil {
		t.Fatalf("CloseFile: %v", err)
	}
	if _, ok := tr.GetFile(fid); ok {
		t.Fatal("expected fid to be forgotten after CloseFile")
	}
}

func TestTreeOpenMissing(t *testing.T) {
	tr := newTree(New("SHARE", testManifest()), &share.Session{})
	if _, err := tr.Open("movies/missing.mp4"); err == nil {
		t.Fatal("expected an error opening a manifest entry that doesn't exist")
	}
}

func TestTreeOpenOrCreateRejectsWrites(t *testing.T) {
	tr := newTree(New("SHARE", testManifest()), &share.Session{})

	if _, _, err := tr.OpenOrCreate("movies/new.mp4", share.FileCreate, false); err == nil {
		t.Fatal("expected file creation to be rejected on a read-only share")
	}
	if _, _, err := tr.OpenOrCreate("movies/clip.mp4", share.FileOverwrite, false); err == nil {
		t.Fatal("expected overwrite to be rejected on a read-only share")
	}
	if _, action, err := tr.OpenOrCreate("movies/clip.mp4", share.FileOpen, false); err != nil || action != share.FileOpenedAction {
		t.Fatalf("OpenOrCreate(FileOpen) = (action=%d, err=%v), want FileOpenedAction, nil", action, err)
	}
}

func TestTreeList(t *testing.T) {
	tr := newTree(New("SHARE", testManifest()), &share.Session{})

	files, err := tr.List("movies/*.mp4")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "clip.mp4" {
		t.Fatalf("List(movies/*.mp4) = %v, want just clip.mp4", files)
	}
}

func TestTreeDisconnectClosesOpenFiles(t *testing.T) {
	tr := newTree(New("SHARE", testManifest()), &share.Session{})
	if _, err := tr.Open("movies/clip.mp4"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tr.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if len(tr.files) != 0 {
		t.Fatalf("expected Disconnect to clear the open-file table, got %d entries", len(tr.files))
	}
}

var _ share.Tree = (*Tree)(nil)
