package maprenderer

import (
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/styling"
	"github.com/jamesrr39/vtrender/styling/mapboxglstyle"
	"github.com/jamesrr39/vtrender/styling/xmlstyle"
)

// LoadStyleFile reads a style document from a file. Files ending in .json are read as Mapbox GL styles, everything else as XML.
// A style without an ID is named after its file.
func LoadStyleFile(path string) (*styling.Style, errorsx.Error) {
	var style *styling.Style
	var err errorsx.Error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		style, err = mapboxglstyle.ParseFile(path)
	} else {
		style, err = xmlstyle.ParseFile(path)
	}
	if err != nil {
		return nil, err
	}

	if style.ID == "" {
		style.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return style, nil
}

func isStyleFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".json":
		return true
	}
	return false
}

// LoadStyleSet makes a style set of the builtin style and the style files in a directory.
// Files that fail to load are logged and skipped.
func LoadStyleSet(logger *logpkg.Logger, fs gofs.Fs, dir string, defaultStyleID string) (*styling.StyleSet, errorsx.Error) {
	styles := []*styling.Style{styling.NewBuiltinStyle(styling.DefaultWidth, styling.DefaultHeight)}

	if dir != "" {
		fileInfos, err := fs.ReadDir(dir)
		if err != nil {
			return nil, errorsx.Wrap(err, "dir", dir)
		}

		for _, fileInfo := range fileInfos {
			if fileInfo.IsDir() || !isStyleFile(fileInfo.Name()) {
				continue
			}

			path := filepath.Join(dir, fileInfo.Name())
			style, err := LoadStyleFile(path)
			if err != nil {
				logger.Error("error loading style from %q. Error: %q", path, err)
				continue
			}

			styles = append(styles, style)
		}
	}

	if defaultStyleID == "" {
		defaultStyleID = styling.BUILTIN_STYLEID
	}

	return styling.NewStyleSet(styles, defaultStyleID)
}
