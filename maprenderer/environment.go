package maprenderer

import (
	"image"
	"os"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/vtrender/canvas"
	"github.com/jamesrr39/vtrender/datasource"
	"github.com/jamesrr39/vtrender/fonts"
	"github.com/jamesrr39/vtrender/vtrenderer"
)

// Environment holds the resources shared by all maps: the font and datasource registries, the logger and the canvas allocator.
// Registration should happen before the first render.
type Environment struct {
	fs          gofs.Fs
	fonts       *fonts.Registry
	datasources *datasource.Registry
	allocator   canvas.Allocator

	mu          sync.RWMutex
	logger      *logpkg.Logger
	registerErr string
}

func NewEnvironment(logger *logpkg.Logger, fs gofs.Fs) *Environment {
	return &Environment{
		fs:          fs,
		fonts:       fonts.NewRegistry(logger, fs),
		datasources: datasource.NewRegistry(fs),
		allocator:   canvas.NewPoolAllocator(),
		logger:      logger,
	}
}

var defaultEnvironment = NewEnvironment(logpkg.NewLogger(os.Stderr, logpkg.LogLevelWarn), gofs.NewOsFs())

// DefaultEnvironment is the environment of maps made with New and NewWithSize
func DefaultEnvironment() *Environment {
	return defaultEnvironment
}

// RegisterDatasources adds a directory to the datasource search path of the default environment
func RegisterDatasources(path string) errorsx.Error {
	return defaultEnvironment.RegisterDatasources(path)
}

// RegisterFonts adds the fonts in a directory to the default environment
func RegisterFonts(path string) errorsx.Error {
	return defaultEnvironment.RegisterFonts(path)
}

// RegisterLastError is the message of the last failed registration in the default environment, or "" if the last registration succeeded
func RegisterLastError() string {
	return defaultEnvironment.RegisterLastError()
}

// LogSeverity sets the level the default environment logs at
func LogSeverity(level logpkg.LogLevel) {
	defaultEnvironment.LogSeverity(level)
}

// Encode exports an image in one of the canvas formats, e.g. "png256" or "jpeg80"
func Encode(img image.Image, format string) ([]byte, errorsx.Error) {
	return canvas.Encode(img, format)
}

func (env *Environment) RegisterDatasources(path string) errorsx.Error {
	return env.register(env.datasources.RegisterDatasources(path))
}

func (env *Environment) RegisterFonts(path string) errorsx.Error {
	return env.register(env.fonts.RegisterFonts(path))
}

func (env *Environment) register(err errorsx.Error) errorsx.Error {
	env.mu.Lock()
	defer env.mu.Unlock()

	env.registerErr = ""
	if err != nil {
		env.registerErr = err.Error()
		return err
	}
	return nil
}

func (env *Environment) RegisterLastError() string {
	env.mu.RLock()
	defer env.mu.RUnlock()

	return env.registerErr
}

// LogSeverity replaces the logger with one writing to standard error at the given level
func (env *Environment) LogSeverity(level logpkg.LogLevel) {
	env.SetLogger(logpkg.NewLogger(os.Stderr, level))
}

func (env *Environment) SetLogger(logger *logpkg.Logger) {
	env.mu.Lock()
	env.logger = logger
	env.mu.Unlock()

	env.fonts.SetLogger(logger)
}

func (env *Environment) Logger() *logpkg.Logger {
	env.mu.RLock()
	defer env.mu.RUnlock()

	return env.logger
}

// Datasources is the registry datasource layers are created from, for registering extra datasource types
func (env *Environment) Datasources() *datasource.Registry {
	return env.datasources
}

func (env *Environment) Fonts() *fonts.Registry {
	return env.fonts
}

func (env *Environment) compositor() *vtrenderer.Compositor {
	logger := env.Logger()
	return vtrenderer.NewCompositor(logger, vtrenderer.NewRasterRenderer(logger, env.fonts), env.datasources)
}
