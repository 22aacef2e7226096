// Package scaffold renders the embedded project template into a new directory.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kitforge/backend/internal/template"
)

//go:embed all:templates
var templates embed.FS

const (
	templateRoot     = "templates"
	templateSuffix   = ".tmpl"
	defaultGoVersion = "1.24"
)

var (
	ErrInvalidName    = errors.New("invalid project name")
	ErrTargetNotEmpty = errors.New("target directory is not empty")

	namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{1,62}$`)
)

type Options struct {
	Name string
	// Module defaults to Name.
	Module string
	// Dir is the parent directory; defaults to the working directory.
	Dir       string
	GoVersion string
	// Force allows writing into a non-empty target, overwriting template files.
	Force bool
}

// Generate writes the project into Dir/Name and returns the created paths relative to it.
func Generate(opts Options) ([]string, error) {
	if !namePattern.MatchString(opts.Name) {
		return nil, fmt.Errorf("%w: %q (lowercase letters, digits and dashes, starting with a letter)", ErrInvalidName, opts.Name)
	}
	if opts.Module == "" {
		opts.Module = opts.Name
	}
	if strings.ContainsAny(opts.Module, " \t\n") {
		return nil, fmt.Errorf("%w: module path %q contains whitespace", ErrInvalidName, opts.Module)
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.GoVersion == "" {
		opts.GoVersion = defaultGoVersion
	}

	target := filepath.Join(opts.Dir, opts.Name)
	if err := checkTarget(target, opts.Force); err != nil {
		return nil, err
	}

	data := template.ProjectData{Name: opts.Name, Module: opts.Module, GoVersion: opts.GoVersion}
	var written []string

	err := fs.WalkDir(templates, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, templateRoot), "/")
		if rel == "" {
			return os.MkdirAll(target, 0o755)
		}
		out := filepath.Join(target, filepath.FromSlash(outputName(rel)))
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}

		body, err := templates.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(template.RenderProject(string(body), data)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		written = append(written, outputName(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(written)
	return written, nil
}

// outputName maps a template path to its generated name: the .tmpl suffix is dropped and
// a leading underscore becomes a dot, since dotfiles are awkward to embed.
func outputName(rel string) string {
	dir, base := path.Split(rel)
	base = strings.TrimSuffix(base, templateSuffix)
	if strings.HasPrefix(base, "_") {
		base = "." + base[1:]
	}
	return dir + base
}

func checkTarget(target string, force bool) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read target: %w", err)
	}
	if len(entries) > 0 && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrTargetNotEmpty, target)
	}
	return nil
}
