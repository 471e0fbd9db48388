package scaffolding

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed all:templates
var embedded embed.FS

// ManifestFile describes a template set. It is never materialized.
const ManifestFile = "template.yml"

// Source is a lookup from (template name, relative path) to content. Paths
// use forward slashes.
type Source interface {
	Templates() ([]string, error)
	List(name string) ([]string, error)
	Read(name, rel string) ([]byte, error)
}

// Manifest is the optional template.yml of a template set.
type Manifest struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`
	Extends     string `yaml:"extends"`
}

// FSSource serves template sets from the top-level directories of an fs.FS.
type FSSource struct {
	fsys  fs.FS
	label string
}

// NewEmbeddedSource returns the template sets compiled into the binary.
func NewEmbeddedSource() *FSSource {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return NewFSSource(sub, "embedded")
}

// NewDirSource serves template sets from dir, one subdirectory per set.
func NewDirSource(dir string) (*FSSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "template directory is not readable", err).WithFile(dir)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidPath, "template directory is not a directory").WithFile(dir)
	}
	return NewFSSource(os.DirFS(dir), dir), nil
}

// NewFSSource wraps an arbitrary file system.
func NewFSSource(fsys fs.FS, label string) *FSSource {
	return &FSSource{fsys: fsys, label: label}
}

// Templates lists the template set names.
func (s *FSSource) Templates() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeTemplateNotFound, "cannot list "+s.label+" templates", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// List returns the files of one template set, sorted, without inheritance.
func (s *FSSource) List(name string) ([]string, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	var files []string
	err := fs.WalkDir(s.fsys, name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, strings.TrimPrefix(p, name+"/"))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeTemplateNotFound, "cannot list template "+name, err)
	}

	sort.Strings(files)
	return files, nil
}

// Read returns one file of a template set.
func (s *FSSource) Read(name, rel string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateRelativePath(rel); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidPath, err.Error())
	}

	data, err := fs.ReadFile(s.fsys, path.Join(name, rel))
	if err != nil {
		return nil, notFound(name, rel, err)
	}
	return data, nil
}

// OverlaySource stacks sources; earlier sources win file by file.
type OverlaySource struct {
	layers []Source
}

// NewOverlaySource creates an overlay in precedence order.
func NewOverlaySource(layers ...Source) *OverlaySource {
	return &OverlaySource{layers: layers}
}

// Templates returns the union of template names.
func (o *OverlaySource) Templates() ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, layer := range o.layers {
		layerNames, err := layer.Templates()
		if err != nil {
			return nil, err
		}
		for _, n := range layerNames {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// List returns the union of files for name across layers.
func (o *OverlaySource) List(name string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, layer := range o.layers {
		layerFiles, err := layer.List(name)
		if err != nil {
			return nil, err
		}
		for _, f := range layerFiles {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Read returns the file from the first layer that has it.
func (o *OverlaySource) Read(name, rel string) ([]byte, error) {
	var lastErr error
	for _, layer := range o.layers {
		data, err := layer.Read(name, rel)
		if err == nil {
			return data, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = notFound(name, rel, fs.ErrNotExist)
	}
	return nil, lastErr
}

// Catalog resolves template inheritance over a Source: a set whose manifest
// names `extends` falls back to the parent set for files it does not ship.
type Catalog struct {
	src Source
}

// NewCatalog wraps src.
func NewCatalog(src Source) *Catalog {
	return &Catalog{src: src}
}

// Templates lists the available template set names.
func (c *Catalog) Templates() ([]string, error) {
	return c.src.Templates()
}

// Manifest reads the manifest of name. Sets without one get an empty
// manifest.
func (c *Catalog) Manifest(name string) (*Manifest, error) {
	m := &Manifest{Name: name}
	data, err := c.src.Read(name, ManifestFile)
	if err != nil {
		if isNotFound(err) {
			return m, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigRead, "invalid "+ManifestFile+" in template "+name)
	}
	m.Name = name
	return m, nil
}

// chain returns name followed by its ancestors.
func (c *Catalog) chain(name string) ([]string, error) {
	if err := c.Check(name); err != nil {
		return nil, err
	}

	var chain []string
	seen := map[string]bool{}
	for current := name; current != ""; {
		if seen[current] {
			return nil, errors.NewValidationError(errors.ErrCodeUnknownTemplate,
				"template inheritance cycle: "+strings.Join(append(chain, current), " -> "))
		}
		seen[current] = true
		chain = append(chain, current)

		m, err := c.Manifest(current)
		if err != nil {
			return nil, err
		}
		if m.Extends != "" {
			if err := c.Check(m.Extends); err != nil {
				return nil, err
			}
		}
		current = m.Extends
	}
	return chain, nil
}

// Check returns an ERR_UNKNOWN_TEMPLATE error listing the available names
// when name is not a template set.
func (c *Catalog) Check(name string) error {
	names, err := c.src.Templates()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return errors.NewValidationError(errors.ErrCodeUnknownTemplate, "unknown template "+name).
		WithContext("available", names).
		WithHint("available templates: " + strings.Join(names, ", "))
}

// List returns every file of name including inherited ones, without the
// manifest.
func (c *Catalog) List(name string) ([]string, error) {
	chain, err := c.chain(name)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var files []string
	for _, n := range chain {
		setFiles, err := c.src.List(n)
		if err != nil {
			return nil, err
		}
		for _, f := range setFiles {
			if f == ManifestFile || seen[f] {
				continue
			}
			seen[f] = true
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Read returns rel from the nearest set in the inheritance chain.
func (c *Catalog) Read(name, rel string) ([]byte, error) {
	chain, err := c.chain(name)
	if err != nil {
		return nil, err
	}

	for _, n := range chain {
		data, err := c.src.Read(n, rel)
		if err == nil {
			return data, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, notFound(name, rel, fs.ErrNotExist)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return errors.NewValidationError(errors.ErrCodeUnknownTemplate, "invalid template name "+name)
	}
	return nil
}

func notFound(name, rel string, cause error) *errors.Error {
	return errors.NewIOError(errors.ErrCodeTemplateNotFound, "template "+name+" has no "+rel, cause).
		WithContext("template", name).
		WithContext("path", rel)
}

func isNotFound(err error) bool {
	return errors.Is(err, &errors.Error{Type: errors.ErrorTypeIO, Code: errors.ErrCodeTemplateNotFound})
}
