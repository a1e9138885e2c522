package datasource

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/vtrender/vtmap"
)

// Factory makes a feature source from a layer's datasource parameters
type Factory func(r *Registry, params map[string]string) (FeatureSource, errorsx.Error)

// Registry holds the datasource types and the directories relative file parameters are resolved against.
// Registration is additive; registering the same directory twice has no effect.
type Registry struct {
	fs          gofs.Fs
	mu          sync.RWMutex
	factories   map[string]Factory
	searchPaths []string
}

func NewRegistry(fs gofs.Fs) *Registry {
	r := &Registry{
		fs:        fs,
		factories: make(map[string]Factory),
	}
	r.Register(DatasourceTypeGeoJSON, newGeoJSONSourceFromParams)
	return r
}

func (r *Registry) Register(datasourceType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[datasourceType] = factory
}

// RegisterDatasources adds a directory to search for datasource files
func (r *Registry) RegisterDatasources(path string) errorsx.Error {
	fileInfo, err := r.fs.Stat(path)
	if err != nil {
		return vtmap.NewRegistrationError(errorsx.Wrap(err, "path", path))
	}

	if !fileInfo.IsDir() {
		return vtmap.NewRegistrationError(errorsx.Errorf("datasource path %q is not a directory", path))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, searchPath := range r.searchPaths {
		if searchPath == path {
			return nil
		}
	}
	r.searchPaths = append(r.searchPaths, path)

	return nil
}

// Types lists the registered datasource types
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create makes a feature source for the parameters' "type"
func (r *Registry) Create(params map[string]string) (FeatureSource, errorsx.Error) {
	datasourceType := params["type"]

	r.mu.RLock()
	factory, ok := r.factories[datasourceType]
	r.mu.RUnlock()

	if !ok {
		return nil, errorsx.Errorf("could not create datasource for type: '%s'", datasourceType)
	}

	source, err := factory(r, params)
	if err != nil {
		return nil, errorsx.Wrap(err, "type", datasourceType)
	}

	return source, nil
}

// resolvePath finds a file parameter; absolute paths are used as is,
// relative paths are looked for beside the style and then in each registered directory.
func (r *Registry) resolvePath(file, base string) (string, errorsx.Error) {
	if filepath.IsAbs(file) {
		return file, nil
	}

	r.mu.RLock()
	candidates := []string{filepath.Join(base, file)}
	for _, searchPath := range r.searchPaths {
		candidates = append(candidates, filepath.Join(searchPath, file))
	}
	r.mu.RUnlock()

	for _, candidate := range candidates {
		_, err := r.fs.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
	}

	return "", errorsx.Errorf("datasource file not found: %s (looked in %s)", file, fmt.Sprint(candidates))
}
