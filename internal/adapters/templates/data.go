package templates

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/zerr"
)

// LoadData reads the template variables at path. A missing file yields an
// empty context. Anything but a JSON object fails with ErrDataFileParseFailed.
func LoadData(path string) (pongo2.Context, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return pongo2.Context{}, nil
	}
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", path)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrDataFileParseFailed), "file", path)
	}
	if data == nil {
		return nil, domain.Annotate(domain.ErrDataFileParseFailed, "file", path, "reason", "not a JSON object")
	}
	return pongo2.Context(data), nil
}
