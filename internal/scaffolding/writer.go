package scaffolding

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/fsutil"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/conneroisu/xcboot/internal/validation"
	"gopkg.in/yaml.v3"
)

// Outcome is what a write did to its destination.
type Outcome string

const (
	// OutcomeCreated means the destination did not exist.
	OutcomeCreated Outcome = "created"
	// OutcomeOverwritten means a forced write replaced different content.
	OutcomeOverwritten Outcome = "overwritten"
	// OutcomeUnchanged means a forced write found identical content.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeSkipped means the destination existed and force was off.
	OutcomeSkipped Outcome = "skipped"
)

// WriteResult records one materialized file.
type WriteResult struct {
	Path       string  `json:"path" yaml:"path"`
	Outcome    Outcome `json:"outcome" yaml:"outcome"`
	Executable bool    `json:"executable" yaml:"executable"`
	Bytes      int     `json:"bytes" yaml:"bytes"`
}

// Materializer renders and writes targets under one project root.
type Materializer struct {
	root   string
	logger logging.Logger
}

// NewMaterializer creates a materializer writing below root.
func NewMaterializer(root string, logger logging.Logger) *Materializer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Materializer{root: root, logger: logger.WithComponent("materializer")}
}

// Write places content at dest, a path relative to the project root.
//
// An existing destination is left alone unless force is set; that is the
// OutcomeSkipped result, not an error. Otherwise the whole file is replaced
// through a temporary file and marked executable when requested.
func (m *Materializer) Write(ctx context.Context, content, dest string, executable, force bool) (WriteResult, error) {
	result := WriteResult{Path: dest, Executable: executable, Bytes: len(content)}

	path, err := validation.ResolveWithin(m.root, dest)
	if err != nil {
		return result, errors.NewValidationError(errors.ErrCodeInvalidPath, err.Error()).WithFile(dest)
	}

	perm := os.FileMode(0o644)
	if executable {
		perm = 0o755
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && !force:
		result.Outcome = OutcomeSkipped
		m.logger.Info(ctx, "file exists, skipping", "path", dest)
		return result, nil
	case err == nil && bytes.Equal(existing, []byte(content)):
		result.Outcome = OutcomeUnchanged
		if err := os.Chmod(path, perm); err != nil {
			return result, errors.NewIOError(errors.ErrCodeWriteFailed, "cannot set file mode", err).WithFile(dest)
		}
		return result, nil
	case err == nil:
		result.Outcome = OutcomeOverwritten
	case os.IsNotExist(err):
		result.Outcome = OutcomeCreated
	default:
		return result, errors.NewIOError(errors.ErrCodeWriteFailed, "cannot inspect destination", err).WithFile(dest)
	}

	if err := fsutil.WriteFileAtomic(path, []byte(content), perm); err != nil {
		return result, errors.NewIOError(errors.ErrCodeWriteFailed, "cannot write file", err).WithFile(dest)
	}

	m.logger.Debug(ctx, "wrote file", "path", dest, "outcome", string(result.Outcome))
	return result, nil
}

// Materialize reads the target's template, renders it and writes it.
// Rendering failures abort before the destination is touched.
func (m *Materializer) Materialize(ctx context.Context, src Source, template string, t Target, bindings Bindings, force bool) (WriteResult, error) {
	data, err := src.Read(template, t.Source)
	if err != nil {
		return WriteResult{Path: t.Destination}, err
	}

	content, err := Render(string(data), bindings)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			e.WithFile(t.Source)
		}
		m.logger.Warn(ctx, err, "template left placeholders unresolved",
			"source", t.Source, "tokens", UnresolvedTokens(err))
		return WriteResult{Path: t.Destination}, err
	}
	if err := checkYAML(t.Destination, content); err != nil {
		return WriteResult{Path: t.Destination}, err
	}

	return m.Write(ctx, content, t.Destination, t.Executable, force)
}

// checkYAML refuses rendered .yml/.yaml content that no longer parses, which
// happens when a bound value carries quotes or backslashes into a quoted
// scalar.
func checkYAML(dest, content string) error {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".yml", ".yaml":
	default:
		return nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(content), &node); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRendering,
			"rendered "+dest+" is not valid YAML: "+err.Error()).
			WithFile(dest).
			WithHint("check the scheme, device and version values for quotes or backslashes")
	}
	return nil
}
