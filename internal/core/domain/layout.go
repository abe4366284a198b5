package domain

import (
	"path"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "sitepipe.yaml"

	// DefaultSourceDir is the source tree, relative to the project root.
	DefaultSourceDir = "src"

	// DefaultOutputDir is the output tree, relative to the project root.
	DefaultOutputDir = "public"

	// DataFileName is the optional JSON file holding template variables.
	DataFileName = "twig.json"

	// StylesDir is the output namespace for stylesheets.
	StylesDir = "styles"

	// ScriptsDir is the output namespace for scripts.
	ScriptsDir = "scripts"

	// FontsDir is the output namespace for fonts.
	FontsDir = "fonts"

	// ImagesDir is the output namespace for images.
	ImagesDir = "imgs"

	// IconsDir is the icon source directory below the images directory.
	IconsDir = "icons"

	// SpriteFileName is the icon sprite written into ImagesDir.
	SpriteFileName = "icons.svg"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDataFile returns the data file path relative to the project root.
func DefaultDataFile() string {
	return filepath.Join(DefaultSourceDir, DataFileName)
}

// SpritePath returns the slash-separated sprite location relative to the output root.
func SpritePath() string {
	return path.Join(ImagesDir, SpriteFileName)
}
