package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// Pipeline names exposed by the standard registry.
const (
	PipelineBuild         = "build"
	PipelineDev           = "dev"
	PipelineLint          = "lint"
	PipelinePostCSS       = "postcss"
	PipelineMinifyScripts = "minify-scripts"
)

// StandardStages returns the stage set for cfg, keyed by stage name.
func StandardStages(cfg *Config) map[string]*Stage {
	src := filepath.ToSlash(filepath.Clean(cfg.Paths.Source))
	in := func(p string) string { return path.Join(src, p) }
	// Loose files under the fonts and images trees belong to their own stages.
	notAssets := []string{"!" + in(FontsDir+"/**"), "!" + in(ImagesDir+"/**")}

	return map[string]*Stage{
		"clear": {Name: "clear", Kind: KindClear},
		"html": {
			Name:   "html",
			Kind:   KindCopy,
			Inputs: append([]string{in("**/*.html")}, notAssets...),
		},
		"templates": {
			Name:   "templates",
			Kind:   KindTemplates,
			Inputs: []string{in("**/*.twig"), "!" + in("**/_*.twig")},
		},
		"fonts": {
			Name:   "fonts",
			Kind:   KindCopy,
			Inputs: []string{in(FontsDir + "/**/*")},
			Output: FontsDir,
		},
		"styles": {
			Name:   "styles",
			Kind:   KindStyles,
			Inputs: []string{in(StylesDir + "/*.scss"), "!" + in(StylesDir+"/_*.scss")},
			Output: StylesDir,
		},
		"postcss": {
			Name:   "postcss",
			Kind:   KindPostCSS,
			Inputs: []string{StylesDir + "/*.css"},
			From:   FromOutput,
			Output: StylesDir,
		},
		"scripts": {
			Name:   "scripts",
			Kind:   KindCopy,
			Inputs: append([]string{in("**/*.js")}, notAssets...),
		},
		"minify-scripts": {
			Name:   "minify-scripts",
			Kind:   KindMinifyScripts,
			Inputs: []string{ScriptsDir + "/**/*.js"},
			From:   FromOutput,
			Output: ScriptsDir,
		},
		"images": {
			Name:   "images",
			Kind:   KindCopy,
			Inputs: []string{in(ImagesDir + "/**/*"), "!" + in(ImagesDir+"/"+IconsDir+"/**")},
			Output: ImagesDir,
		},
		"sprite": {
			Name:   "sprite",
			Kind:   KindSprite,
			Inputs: []string{in(ImagesDir + "/" + IconsDir + "/**/*.svg")},
			Output: ImagesDir,
		},
		"lint-html": {
			Name:          "lint-html",
			Kind:          KindLintHTML,
			Inputs:        []string{"**/*.html"},
			From:          FromOutput,
			RequireInputs: true,
		},
	}
}

// StandardRegistry builds the registry of entry points and watch rules for cfg.
func StandardRegistry(cfg *Config) (*Registry, error) {
	s := StandardStages(cfg)
	reg := NewRegistry()

	graphs := []*TaskGraph{
		{
			Name:        PipelineBuild,
			Description: "Clear the output and run every stage, minified",
			Root: Series(
				Run(s["clear"]),
				Parallel(
					Series(Run(s["html"]), Run(s["templates"])),
					Run(s["fonts"]),
					Series(Run(s["styles"]), Run(s["postcss"])),
					Series(Run(s["scripts"]), Run(s["minify-scripts"])),
					Series(Run(s["images"]), Run(s["sprite"])),
				),
			),
		},
		{
			Name:        PipelineDev,
			Description: "Clear the output and render content without minification",
			Root: Series(
				Run(s["clear"]),
				Parallel(
					Series(Run(s["html"]), Run(s["templates"])),
					Run(s["fonts"]),
					Run(s["styles"]),
					Run(s["scripts"]),
					Series(Run(s["images"]), Run(s["sprite"])),
				),
			),
		},
		{Name: PipelineLint, Description: "Validate built HTML", Root: Run(s["lint-html"])},
		{Name: PipelinePostCSS, Description: "Post-process compiled stylesheets", Root: Run(required(s["postcss"]))},
		{Name: PipelineMinifyScripts, Description: "Minify built scripts", Root: Run(s["minify-scripts"])},
	}
	for _, name := range []string{"clear", "html", "templates", "fonts", "styles", "scripts", "images", "sprite"} {
		graphs = append(graphs, &TaskGraph{Name: name, Description: "Run the " + name + " stage", Root: Run(s[name])})
	}

	for _, tg := range graphs {
		if err := reg.Register(tg); err != nil {
			return nil, err
		}
	}

	for _, rule := range StandardWatchRules(cfg) {
		if err := reg.AddWatchRule(rule); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// StandardWatchRules maps source changes to the single-stage pipelines that rebuild them.
func StandardWatchRules(cfg *Config) []WatchRule {
	src := filepath.ToSlash(filepath.Clean(cfg.Paths.Source))
	in := func(p string) string { return path.Join(src, p) }

	templates := []string{in("**/*.twig")}
	if data := relToRoot(cfg, cfg.DataFile()); data != "" {
		templates = append(templates, data)
	}

	return []WatchRule{
		{Name: "html", Patterns: []string{in("**/*.html")}, Pipeline: "html", Reload: ReloadFull},
		{Name: "fonts", Patterns: []string{in(FontsDir + "/**/*")}, Pipeline: "fonts", Reload: ReloadFull},
		{Name: "styles", Patterns: []string{in("**/*.scss")}, Pipeline: "styles", Reload: ReloadCSS},
		{Name: "scripts", Patterns: []string{in("**/*.js")}, Pipeline: "scripts", Reload: ReloadFull},
		{Name: "templates", Patterns: templates, Pipeline: "templates", Reload: ReloadFull},
		{
			Name:     "images",
			Patterns: []string{in(ImagesDir + "/**/*"), "!" + in(ImagesDir+"/"+IconsDir+"/**")},
			Pipeline: "images",
			Reload:   ReloadFull,
		},
		{Name: "sprite", Patterns: []string{in(ImagesDir + "/" + IconsDir + "/**/*.svg")}, Pipeline: "sprite", Reload: ReloadFull},
	}
}

// required returns a copy of s that fails when it resolves no inputs.
func required(s *Stage) *Stage {
	cp := *s
	cp.RequireInputs = true
	return &cp
}

func relToRoot(cfg *Config, p string) string {
	rel, err := filepath.Rel(cfg.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
