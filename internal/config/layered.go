package config

import (
	"os"
	"sort"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Document is one YAML configuration document addressed by dotted key paths.
type Document struct {
	name    string
	path    string
	v       *viper.Viper
	present bool
}

// LoadDocument reads the YAML document at path. A missing file yields an
// empty document rather than an error.
func LoadDocument(name, path string) (*Document, error) {
	d := &Document{name: name, path: path}
	if err := d.reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewMemoryDocument builds a read-only document from nested maps.
func NewMemoryDocument(name string, values map[string]interface{}) *Document {
	v := viper.New()
	_ = v.MergeConfigMap(values)
	return &Document{name: name, v: v, present: true}
}

func (d *Document) reload() error {
	v := viper.New()
	v.SetConfigType("yaml")
	d.v = v
	d.present = false

	if d.path == "" {
		return nil
	}

	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewIOError(errors.ErrCodeConfigRead, "cannot open "+d.name+" document", err).WithFile(d.path)
	}
	defer f.Close()

	if err := v.ReadConfig(f); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigRead, "cannot parse "+d.name+" document").WithFile(d.path)
	}
	d.present = true
	return nil
}

// Name returns the layer name of the document.
func (d *Document) Name() string { return d.name }

// Path returns the backing file, or "" for in-memory documents.
func (d *Document) Path() string { return d.path }

// Exists reports whether the backing file was found.
func (d *Document) Exists() bool { return d.present }

// Keys returns every leaf key path in the document, sorted.
func (d *Document) Keys() []string {
	keys := d.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Lookup returns the scalar at key. A missing or null value reports
// found=false. A mapping or sequence where a scalar is expected, or a scalar
// where the path needs a mapping, is an InvalidConfigStructure error.
func (d *Document) Lookup(key string) (interface{}, bool, error) {
	key = strings.ToLower(key)

	parts := strings.Split(key, ".")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		raw := d.v.Get(prefix)
		if raw == nil {
			return nil, false, nil
		}
		if _, ok := raw.(map[string]interface{}); !ok {
			return nil, false, d.shapeError(key, "'"+prefix+"' is a scalar, expected a mapping")
		}
	}

	raw := d.v.Get(key)
	switch raw.(type) {
	case nil:
		return nil, false, nil
	case map[string]interface{}, []interface{}:
		return nil, false, d.shapeError(key, "expected a scalar value")
	}
	return raw, true, nil
}

func (d *Document) shapeError(key, msg string) *errors.Error {
	e := errors.NewConfigStructureError(key, d.name+" document: "+key+": "+msg)
	if d.path != "" {
		e.WithFile(d.path)
	}
	return e
}

// Layered resolves keys across an ordered list of documents, highest
// precedence first. Resolution is per key: a document that omits a key never
// shadows a lower document that defines it.
type Layered struct {
	layers   []*Document
	writable *Document
}

// NewLayered creates a resolver over docs in precedence order. The first
// document is the one Set writes to.
func NewLayered(docs ...*Document) *Layered {
	l := &Layered{layers: docs}
	if len(docs) > 0 {
		l.writable = docs[0]
	}
	return l
}

// Open loads the user and system documents of the project at root, backed by
// the built-in Defaults.
func Open(root string) (*Layered, error) {
	user, err := LoadDocument(UserLayerName, UserPath(root))
	if err != nil {
		return nil, err
	}
	system, err := LoadDocument(SystemLayerName, SystemPath(root))
	if err != nil {
		return nil, err
	}
	return NewLayered(user, system, NewMemoryDocument(DefaultLayerName, Defaults)), nil
}

// OpenWithoutSystem loads the user document of the project at root over the
// built-in Defaults, leaving out the system document. A forced install uses
// it because that run rewrites the system document from the result.
func OpenWithoutSystem(root string) (*Layered, error) {
	user, err := LoadDocument(UserLayerName, UserPath(root))
	if err != nil {
		return nil, err
	}
	return NewLayered(user, NewMemoryDocument(DefaultLayerName, Defaults)), nil
}

// Layers returns the documents in precedence order.
func (l *Layered) Layers() []*Document {
	return l.layers
}

// User returns the writable document.
func (l *Layered) User() *Document {
	return l.writable
}

// Resolve is the single lookup entry point: it returns the first non-null
// scalar for key and the name of the layer it came from.
func (l *Layered) Resolve(key string) (value interface{}, layer string, found bool, err error) {
	for _, doc := range l.layers {
		v, ok, err := doc.Lookup(key)
		if err != nil {
			return nil, "", false, err
		}
		if ok {
			return v, doc.Name(), true, nil
		}
	}
	return nil, "", false, nil
}

// Get returns the string value of key, or def when no layer defines it.
func (l *Layered) Get(key, def string) (string, error) {
	v, _, found, err := l.Resolve(key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", errors.NewConfigStructureError(key, key+": "+err.Error())
	}
	return s, nil
}

// GetBool returns the boolean value of key, or def when no layer defines it.
func (l *Layered) GetBool(key string, def bool) (bool, error) {
	v, _, found, err := l.Resolve(key)
	if err != nil {
		return false, err
	}
	if !found {
		return def, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, errors.NewConfigStructureError(key, key+": expected a boolean: "+err.Error())
	}
	return b, nil
}

// Set writes key into the user document, creating it if needed.
func (l *Layered) Set(key string, value interface{}) error {
	if l.writable == nil || l.writable.path == "" {
		return errors.NewInternalError(errors.ErrCodeConfigWrite, "no writable configuration document", nil)
	}
	return l.writable.Set(key, value)
}

// Keys returns the union of keys across all layers, sorted.
func (l *Layered) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, doc := range l.layers {
		for _, k := range doc.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
