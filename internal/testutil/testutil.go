// Package testutil provides test helpers for CLI tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ScriptProject is a minimal script project: a TypeScript entry that imports
// a stylesheet and a helper module calling one manager API.
var ScriptProject = map[string]string{
	"src/style.css": "body { color: red; }",
	"src/util.ts": `export function remember(key: string, value: number): void {
  GM_setValue(key, value);
}
`,
	"src/index.ts": `import css from "./style.css";
import { remember } from "./util";

declare function GM_setValue(key: string, value: unknown): void;

remember("loaded", css.length);
`,
}

// ScriptConfig is a usbuild.yaml for ScriptProject.
const ScriptConfig = `entry: src/index.ts
outDir: dist
server:
  open: false
header:
  name: "Test Script!"
  namespace: https://example.com
  version: 1.0.0
  match:
    - https://example.com/*
    - https://example.com/*
`

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteProject writes files into a fresh temp directory and returns it.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// ReadFile returns the content of dir/name, failing the test if it cannot
// be read.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(b)
}
