package links

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	specs, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load missing file error = %v, want nil", err)
	}
	if specs != nil {
		t.Errorf("Load missing file = %v, want nil", specs)
	}
}

func TestLoad_Aliases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.json")
	writeFile(t, path, `[
		{"src": "~/a", "dest": ".env"},
		{"source": "~/b", "target": "conf/local.toml", "force": true}
	]`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("Load returned %d specs, want 2", len(specs))
	}
	if specs[0] != (Spec{Src: "~/a", Dest: ".env"}) {
		t.Errorf("specs[0] = %+v", specs[0])
	}
	if specs[1] != (Spec{Src: "~/b", Dest: "conf/local.toml", Force: true}) {
		t.Errorf("specs[1] = %+v", specs[1])
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not an array", `{"src": "a", "dest": "b"}`},
		{"missing dest", `[{"src": "a"}]`},
		{"missing src", `[{"dest": "b"}]`},
		{"broken json", `[{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "links.json")
			writeFile(t, path, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load = nil error, want error")
			}
		})
	}
}

func TestApply_CreatesSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "secrets", ".env")
	writeFile(t, src, "SECRET=1")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(wt, 0755); err != nil {
		t.Fatal(err)
	}

	results := Apply(wt, []Spec{{Src: src, Dest: ".env"}}, Options{})
	if len(results) != 1 || results[0].Status != StatusApplied {
		t.Fatalf("results = %+v, want one applied", results)
	}

	target, err := os.Readlink(filepath.Join(wt, ".env"))
	if err != nil {
		t.Fatalf("dest is not a symlink: %v", err)
	}
	if target != src {
		t.Errorf("symlink target = %q, want %q", target, src)
	}
}

func TestApply_NestedDestCreatesParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "local.toml")
	writeFile(t, src, "x = 1")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(wt, 0755); err != nil {
		t.Fatal(err)
	}

	results := Apply(wt, []Spec{{Src: src, Dest: "config/dev/local.toml"}}, Options{})
	if results[0].Status != StatusApplied {
		t.Fatalf("result = %+v, want applied", results[0])
	}
	if _, err := os.Lstat(filepath.Join(wt, "config", "dev", "local.toml")); err != nil {
		t.Errorf("nested dest missing: %v", err)
	}
}

// TestApply_RejectsEscapingDest verifies that escaping or absolute dests fail
// with ErrLinkPath while other entries in the same run still apply.
func TestApply_RejectsEscapingDest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "file")
	writeFile(t, src, "data")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(wt, 0755); err != nil {
		t.Fatal(err)
	}

	specs := []Spec{
		{Src: src, Dest: "../.env"},
		{Src: src, Dest: "/etc/evil"},
		{Src: src, Dest: "nested/../../escape"},
		{Src: src, Dest: "ok.txt"},
	}
	results := Apply(wt, specs, Options{})

	for i := 0; i < 3; i++ {
		if results[i].Status != StatusFailed {
			t.Errorf("results[%d] = %+v, want failed", i, results[i])
		}
		if !errors.Is(results[i].Err, ErrLinkPath) {
			t.Errorf("results[%d].Err = %v, want ErrLinkPath", i, results[i].Err)
		}
	}
	if results[3].Status != StatusApplied {
		t.Errorf("valid entry = %+v, want applied despite earlier failures", results[3])
	}
	if !AnyFailed(results) {
		t.Error("AnyFailed = false, want true")
	}
}

func TestApply_ExistingDestSkippedWithoutForce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	writeFile(t, src, "new")
	wt := filepath.Join(dir, "wt")
	existing := filepath.Join(wt, ".env")
	writeFile(t, existing, "old")

	results := Apply(wt, []Spec{{Src: src, Dest: ".env"}}, Options{})
	if results[0].Status != StatusSkipped {
		t.Fatalf("result = %+v, want skipped", results[0])
	}

	// Original file must be untouched.
	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "old" {
		t.Errorf("existing dest was modified: %q, %v", data, err)
	}
}

func TestApply_ForceReplacesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	writeFile(t, src, "new")
	wt := filepath.Join(dir, "wt")
	writeFile(t, filepath.Join(wt, ".env"), "old")

	results := Apply(wt, []Spec{{Src: src, Dest: ".env"}}, Options{Force: true})
	if results[0].Status != StatusApplied {
		t.Fatalf("result = %+v, want applied", results[0])
	}
	if target, err := os.Readlink(filepath.Join(wt, ".env")); err != nil || target != src {
		t.Errorf("dest not replaced with symlink: %q, %v", target, err)
	}
}

func TestApply_ForceRefusesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	writeFile(t, src, "new")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(filepath.Join(wt, "config"), 0755); err != nil {
		t.Fatal(err)
	}

	results := Apply(wt, []Spec{{Src: src, Dest: "config", Force: true}}, Options{})
	if results[0].Status != StatusFailed {
		t.Fatalf("result = %+v, want failed", results[0])
	}
	if _, err := os.Stat(filepath.Join(wt, "config")); err != nil {
		t.Error("directory was removed, force must never delete directories")
	}
}

func TestApply_AlreadyLinkedSkips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "file")
	writeFile(t, src, "data")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(wt, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(src, filepath.Join(wt, ".env")); err != nil {
		t.Fatal(err)
	}

	results := Apply(wt, []Spec{{Src: src, Dest: ".env"}}, Options{})
	if results[0].Status != StatusSkipped || results[0].Reason != "already linked" {
		t.Errorf("result = %+v, want skipped/already linked", results[0])
	}
}

func TestApply_MissingSourceSkips(t *testing.T) {
	t.Parallel()

	wt := t.TempDir()
	results := Apply(wt, []Spec{{Src: filepath.Join(wt, "missing"), Dest: ".env"}}, Options{})
	if results[0].Status != StatusSkipped {
		t.Errorf("result = %+v, want skipped", results[0])
	}
}

func TestApply_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "file")
	writeFile(t, src, "data")
	wt := filepath.Join(dir, "wt")
	if err := os.MkdirAll(wt, 0755); err != nil {
		t.Fatal(err)
	}

	results := Apply(wt, []Spec{{Src: src, Dest: ".env"}}, Options{DryRun: true})
	if results[0].Status != StatusApplied {
		t.Fatalf("result = %+v, want applied (planned)", results[0])
	}
	if _, err := os.Lstat(filepath.Join(wt, ".env")); !os.IsNotExist(err) {
		t.Error("dry-run created a link")
	}
}

func TestApply_EntrySpecificForce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	writeFile(t, src, "new")
	wt := filepath.Join(dir, "wt")
	writeFile(t, filepath.Join(wt, "a"), "old")
	writeFile(t, filepath.Join(wt, "b"), "old")

	results := Apply(wt, []Spec{
		{Src: src, Dest: "a", Force: true},
		{Src: src, Dest: "b"},
	}, Options{})

	if results[0].Status != StatusApplied {
		t.Errorf("forced entry = %+v, want applied", results[0])
	}
	if results[1].Status != StatusSkipped {
		t.Errorf("unforced entry = %+v, want skipped", results[1])
	}
}
