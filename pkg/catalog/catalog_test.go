package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExport drops an empty export file into dir, creating dir if needed.
func writeExport(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("export"), 0o644))
}

func TestLoadScansRootAndTextSubdir(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "Finder.pdf")
	writeExport(t, filepath.Join(scriptsDir, "text"), "Notes.txt")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())

	tools := registry.Tools()
	assert.Equal(t, "app.finder", tools[0].Name)
	assert.Equal(t, "Finder", tools[0].AppName)
	assert.Equal(t, "app.notes", tools[1].Name)
	assert.Equal(t, "Notes", tools[1].AppName)
}

func TestLoadListingOrderIsLexicographic(t *testing.T) {
	scriptsDir := t.TempDir()
	for _, name := range []string{"Zoom.pdf", "Arc.pdf", "Music.pdf"} {
		writeExport(t, scriptsDir, name)
	}

	registry, err := Load(scriptsDir)
	require.NoError(t, err)

	var names []string
	for _, tool := range registry.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"app.arc", "app.music", "app.zoom"}, names)
}

func TestLoadListingOrderFollowsApplicationNames(t *testing.T) {
	scriptsDir := t.TempDir()
	// "Music" sorts before "iTerm" byte-wise even though the derived wire
	// names sort the other way around.
	writeExport(t, scriptsDir, "iTerm.pdf")
	writeExport(t, scriptsDir, "Music.pdf")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)

	var names []string
	for _, tool := range registry.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"app.music", "app.iterm"}, names)
}

func TestLoadDeduplicatesAcrossFormats(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "Finder.pdf")
	writeExport(t, filepath.Join(scriptsDir, "text"), "Finder.txt")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestLoadIgnoresWrongPlacementAndExtensions(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "Finder.pdf")
	writeExport(t, scriptsDir, "Stray.txt")                            // txt outside text/
	writeExport(t, scriptsDir, "notes.md")                             // unrecognized extension
	writeExport(t, filepath.Join(scriptsDir, "text"), "Manual.pdf")    // pdf inside text/
	writeExport(t, filepath.Join(scriptsDir, "nested"), "Mail.pdf")    // other subdirs are not scanned
	require.NoError(t, os.MkdirAll(filepath.Join(scriptsDir, "Dir.pdf"), 0o755))

	registry, err := Load(scriptsDir)
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())
	_, ok := registry.Get("app.finder")
	assert.True(t, ok)
}

func TestLoadExtensionMatchIsCaseInsensitive(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "Keynote.PDF")
	writeExport(t, filepath.Join(scriptsDir, "text"), "Pages.TXT")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())
}

func TestLoadStemsAreCaseSensitive(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "finder.pdf")
	writeExport(t, scriptsDir, "Finder.pdf")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)

	// Two distinct stems collapse to the same slug; the registry keeps one
	// entry per wire name, the first in application-name order.
	require.Equal(t, 1, registry.Len())
	tool, ok := registry.Get("app.finder")
	require.True(t, ok)
	assert.Equal(t, "Finder", tool.AppName)
}

func TestLoadMissingRootYieldsEmptyRegistry(t *testing.T) {
	registry, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestLoadMissingTextSubdirIsFine(t *testing.T) {
	scriptsDir := t.TempDir()
	writeExport(t, scriptsDir, "Safari.pdf")

	registry, err := Load(scriptsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestToolDescriptor(t *testing.T) {
	tool := NewTool("Adobe Photoshop 2024")
	assert.Equal(t, "app.adobe-photoshop-2024", tool.Name)
	assert.Equal(t, "Execute AppleScript commands in the Adobe Photoshop 2024 application context.", tool.Description)

	descriptor := tool.Descriptor()
	assert.Equal(t, tool.Name, descriptor.Name)

	schema, ok := descriptor.InputSchema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"script"}, schema["required"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	_, ok = properties["script"]
	assert.True(t, ok)
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry([]Tool{NewTool("Finder")})

	tool, ok := registry.Get("app.finder")
	require.True(t, ok)
	assert.Equal(t, "Finder", tool.AppName)

	_, ok = registry.Get("app.missing")
	assert.False(t, ok)

	// Lookup is exact: wire names are already lower case.
	_, ok = registry.Get("APP.FINDER")
	assert.False(t, ok)
}
