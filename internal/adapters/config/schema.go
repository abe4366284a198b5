package config

// Configfile is the on-disk shape of sitepipe.yaml.
// Pointer fields distinguish "absent" from an explicit zero value.
type Configfile struct {
	Root        string    `yaml:"root"`
	Paths       PathsDTO  `yaml:"paths"`
	Server      ServerDTO `yaml:"server"`
	Watch       WatchDTO  `yaml:"watch"`
	Styles      StylesDTO `yaml:"styles"`
	Lint        LintDTO   `yaml:"lint"`
	Concurrency *int      `yaml:"concurrency"`
}

// PathsDTO configures the source, output and data locations.
type PathsDTO struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Data   string `yaml:"data"`
}

// ServerDTO configures the dev server.
type ServerDTO struct {
	Host string `yaml:"host"`
	Port *int   `yaml:"port"`
	Open *bool  `yaml:"open"`
}

// WatchDTO configures the watch coordinator. Debounce is a Go duration string.
type WatchDTO struct {
	Debounce string   `yaml:"debounce"`
	Ignore   []string `yaml:"ignore"`
}

// StylesDTO configures the style compiler.
type StylesDTO struct {
	Compiler   []string `yaml:"compiler"`
	Sourcemaps *bool    `yaml:"sourcemaps"`
	LoadPaths  []string `yaml:"loadPaths"`
}

// LintDTO toggles lint rules by name.
type LintDTO struct {
	Rules map[string]bool `yaml:"rules"`
}
