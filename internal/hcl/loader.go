package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/fsutil"
	"github.com/weftworks/weft/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all possible top-level blocks from any file. Pipeline
// blocks and manifest blocks may live in the same file or be split across
// files; the loader does not care.
type fileRoot struct {
	Definitions []*schema.ComponentDefinition `hcl:"component_def,block"`
	Components  []*schema.Component           `hcl:"component,block"`
	ForEach     []*schema.ForEach             `hcl:"for_each,block"`
	Remain      hcl.Body                      `hcl:",remain"`
}

// Load orchestrates the HCL loading process across all given paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Definitions: make(map[string]*config.ComponentDefinition),
		Pipeline:    &config.Pipeline{},
	}

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var diags hcl.Diagnostics

	for _, file := range files {
		hclFile, parseDiags := parser.ParseHCLFile(file)
		if parseDiags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, parseDiags)
		}

		var root fileRoot
		decodeDiags := gohcl.DecodeBody(hclFile.Body, nil, &root)
		if decodeDiags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, decodeDiags)
		}

		for _, def := range root.Definitions {
			translated, err := l.translateDefinition(ctx, def)
			if err != nil {
				return nil, err
			}
			if _, exists := model.Definitions[translated.Type]; exists {
				logger.Warn("Duplicate component definition, overwriting.", "type", translated.Type)
			}
			model.Definitions[translated.Type] = translated
		}
		for _, c := range root.Components {
			model.Pipeline.Components = append(model.Pipeline.Components, l.translateComponent(c))
		}
		for _, fe := range root.ForEach {
			group, feDiags := l.translateForEach(fe)
			diags = append(diags, feDiags...)
			model.Pipeline.ForEach = append(model.Pipeline.ForEach, group)
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}

	logger.Debug("HCL loading complete.",
		"definitions", len(model.Definitions),
		"components", len(model.Pipeline.Components),
		"for_each_groups", len(model.Pipeline.ForEach))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a deduplicated flat
// list of .hcl files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // a configured path that doesn't exist is not an error
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, p := range found {
				add(p)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
