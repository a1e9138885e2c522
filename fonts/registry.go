package fonts

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/vtmap"
)

const DefaultFaceName = "Go Regular"

var fontFileExtensions = map[string]bool{
	".ttf": true,
	".ttc": true,
}

// Registry maps face names, such as "DejaVu Sans Book", to parsed fonts
type Registry struct {
	logger *logpkg.Logger
	fs     gofs.Fs

	mu    sync.RWMutex
	faces map[string]*truetype.Font
	dirs  map[string]bool
}

func NewRegistry(logger *logpkg.Logger, fs gofs.Fs) *Registry {
	return &Registry{
		logger: logger,
		fs:     fs,
		faces:  map[string]*truetype.Font{DefaultFaceName: DefaultFont()},
		dirs:   make(map[string]bool),
	}
}

// RegisterFonts parses the font files in a directory tree. Files that cannot be parsed are skipped.
// Registering a directory again has no effect.
func (r *Registry) RegisterFonts(dir string) errorsx.Error {
	r.mu.RLock()
	registered := r.dirs[dir]
	r.mu.RUnlock()
	if registered {
		return nil
	}

	fileInfo, err := r.fs.Stat(dir)
	if err != nil {
		return vtmap.NewRegistrationError(errorsx.Wrap(err, "path", dir))
	}

	if !fileInfo.IsDir() {
		return vtmap.NewRegistrationError(errorsx.Errorf("font path %q is not a directory", dir))
	}

	faces := make(map[string]*truetype.Font)
	err = r.walk(dir, faces)
	if err != nil {
		return vtmap.NewRegistrationError(errorsx.Wrap(err, "path", dir))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, font := range faces {
		r.faces[name] = font
	}
	r.dirs[dir] = true

	return nil
}

func (r *Registry) walk(dir string, faces map[string]*truetype.Font) errorsx.Error {
	fileInfos, err := r.fs.ReadDir(dir)
	if err != nil {
		return errorsx.Wrap(err)
	}

	for _, fileInfo := range fileInfos {
		path := filepath.Join(dir, fileInfo.Name())
		if fileInfo.IsDir() {
			err := r.walk(path, faces)
			if err != nil {
				return err
			}
			continue
		}

		if !fontFileExtensions[strings.ToLower(filepath.Ext(path))] {
			continue
		}

		data, err := r.fs.ReadFile(path)
		if err != nil {
			return errorsx.Wrap(err, "path", path)
		}

		font, err := freetype.ParseFont(data)
		if err != nil {
			r.getLogger().Warn("skipping font file %q: %s", path, err)
			continue
		}

		faces[FaceName(font)] = font
	}

	return nil
}

func (r *Registry) SetLogger(logger *logpkg.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger = logger
}

func (r *Registry) getLogger() *logpkg.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.logger
}

// Register adds a parsed font under the given face name
func (r *Registry) Register(name string, font *truetype.Font) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.faces[name] = font
}

// Face finds a font by face name, falling back to the default font
func (r *Registry) Face(name string) *truetype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()

	font, ok := r.faces[name]
	if !ok {
		return DefaultFont()
	}
	return font
}

func (r *Registry) FaceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.faces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FaceName is the family and style name of a font, e.g. "Go Regular"
func FaceName(font *truetype.Font) string {
	family := font.Name(truetype.NameIDFontFamily)
	subfamily := font.Name(truetype.NameIDFontSubfamily)
	if subfamily == "" {
		return family
	}
	return family + " " + subfamily
}
