/*
Package catalog discovers callable automation tools from a directory of
exported application scripting dictionaries.

The scan recognizes PDF exports in the directory root and plain-text exports
in its text/ subdirectory. Each distinct file stem is an application; the
application becomes one tool named after its slug.
*/
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/osatools/osamcp/pkg/protocol"
)

// TextSubdir is the nested directory holding plain-text dictionary exports.
const TextSubdir = "text"

// Extensions recognized by the scan, per directory level.
var (
	rootExtensions = []string{".pdf"}
	textExtensions = []string{".txt"}
)

// Tool is one callable automation target derived from a dictionary export.
type Tool struct {
	// Name is the wire identity, always "app." plus the slug.
	Name string
	// AppName is the application addressed by generated scripts, exactly as
	// the export file was named.
	AppName string
	// Description is the human-readable summary advertised to clients.
	Description string
}

// NewTool derives the tool identity for an application name.
func NewTool(appName string) Tool {
	return Tool{
		Name:        "app." + Slug(appName),
		AppName:     appName,
		Description: fmt.Sprintf("Execute AppleScript commands in the %s application context.", appName),
	}
}

// Descriptor returns the wire descriptor including the input schema. Every
// tool takes the same single argument: the script body to run.
func (t Tool) Descriptor() protocol.ToolDescription {
	return protocol.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"script": map[string]any{
					"type":        "string",
					"description": "AppleScript commands to execute inside a 'tell application' block",
				},
			},
			"required": []string{"script"},
		},
	}
}

// Registry is the immutable tool set discovered at startup. Tools are held
// in lexicographic application-name order.
type Registry struct {
	tools  []Tool
	lookup map[string]Tool
}

// NewRegistry indexes the given tools. Listing order is lexicographic by
// application name; when distinct application names collapse to the same
// wire name, the first in that order wins.
func NewRegistry(tools []Tool) *Registry {
	sorted := make([]Tool, len(tools))
	copy(sorted, tools)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AppName < sorted[j].AppName
	})

	lookup := make(map[string]Tool, len(sorted))
	unique := make([]Tool, 0, len(sorted))
	for _, tool := range sorted {
		if _, exists := lookup[tool.Name]; exists {
			continue
		}
		lookup[tool.Name] = tool
		unique = append(unique, tool)
	}
	return &Registry{tools: unique, lookup: lookup}
}

// Load scans scriptsDir and builds the registry. A missing directory yields
// an empty registry; a directory that exists but cannot be read is an error.
func Load(scriptsDir string) (*Registry, error) {
	appNames := map[string]struct{}{}

	if _, err := os.Stat(scriptsDir); err == nil {
		if err := collectAppNames(scriptsDir, rootExtensions, appNames); err != nil {
			return nil, err
		}
		textDir := filepath.Join(scriptsDir, TextSubdir)
		if _, err := os.Stat(textDir); err == nil {
			if err := collectAppNames(textDir, textExtensions, appNames); err != nil {
				return nil, err
			}
		}
	}

	tools := make([]Tool, 0, len(appNames))
	for appName := range appNames {
		tools = append(tools, NewTool(appName))
	}
	return NewRegistry(tools), nil
}

// collectAppNames records the stem of every regular file in dir whose
// extension matches, case-insensitively, one of extensions.
func collectAppNames(dir string, extensions []string, appNames map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading scripts directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, candidate := range extensions {
			if strings.EqualFold(ext, candidate) {
				if stem := strings.TrimSuffix(entry.Name(), ext); stem != "" {
					appNames[stem] = struct{}{}
				}
				break
			}
		}
	}
	return nil
}

// Get looks up a tool by wire name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.lookup[name]
	return tool, ok
}

// Tools returns the registered tools in listing order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Descriptors returns wire descriptors for every tool in listing order.
func (r *Registry) Descriptors() []protocol.ToolDescription {
	descriptors := make([]protocol.ToolDescription, 0, len(r.tools))
	for _, tool := range r.tools {
		descriptors = append(descriptors, tool.Descriptor())
	}
	return descriptors
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
