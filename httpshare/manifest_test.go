package httpshare

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		`\dir\file.txt`: "dir/file.txt",
		"/dir/file.txt": "dir/file.txt",
		"file.txt":      "file.txt",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestManifestFind(t *testing.T) {
	m := &Manifest{Entries: []ManifestEntry{
		{Path: "movies/clip.mp4", Size: 1024, URL: "http://example.com/clip.mp4"},
	}}

	if _, ok := m.find(`movies\clip.mp4`); !ok {
		t.Fatal("expected backslash path to normalize and match")
	}
	if _, ok := m.find("MOVIES/CLIP.MP4"); !ok {
		t.Fatal("expected case-insensitive match")
	}
	if _, ok := m.find("movies/missing.mp4"); ok {
		t.Fatal("expected no match for unknown path")
	}
}

func TestManifestListMatchesOneDirectoryLevel(t *testing.T) {
	m := &Manifest{Entries: []ManifestEntry{
		{Path: "movies/a.mp4"},
		{Path: "movies/b.mkv"},
		{Path: "movies/sub/c.mp4"},
		{Path: "docs/readme.txt"},
	}}

	got := m.list("movies", "*.mp4")
	if len(got) != 1 || got[0].Path != "movies/a.mp4" {
		t.Fatalf("list(movies, *.mp4) = %v, want just movies/a.mp4", got)
	}

	all := m.list("movies", "*")
	if len(all) != 2 {
		t.Fatalf("list(movies, *) = %d entries, want 2 (subdirectory entries excluded)", len(all))
	}
}

func TestWildcardMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*", "anything", true},
		{"*.mp4", "clip.mp4", true},
		{"*.mp4", "clip.mkv", false},
		{"clip?.mp4", "clip1.mp4", true},
		{"clip?.mp4", "clip12.mp4", false},
		{"exact.txt", "exact.txt", true},
		{"exact.txt", "other.txt", false},
	}
	for _, c := range cases {
		if got := matchWildcard(c.pattern, c.name); got != c.want {
			t.Errorf("matchWildcard(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}

func TestSplitDir(t *testing.T) {
	dir, name := splitDir("movies/clip.mp4")
	if dir != "movies" || name != "clip.mp4" {
		t.Fatalf("splitDir = (%q, %q)", dir, name)
	}
	dir, name = splitDir("clip.mp4")
	if dir != "" || name != "clip.mp4" {
		t.Fatalf("splitDir with no directory = (%q, %q)", dir, name)
	}
}
