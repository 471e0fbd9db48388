package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// userSkeleton is written when the user document does not exist yet.
const userSkeleton = `# Local overrides for .xcboot/config.yml.
# Keys set here take precedence over the system document, one key at a time.
`

// Set writes value at key, creating intermediate mappings. Existing content,
// key order and comments are preserved.
func (d *Document) Set(key string, value interface{}) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, fmt.Sprintf("invalid key path %q", key))
	}

	content, err := os.ReadFile(d.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(errors.ErrCodeConfigRead, "cannot read "+d.name+" document", err).WithFile(d.path)
	}

	var root yaml.Node
	if len(bytes.TrimSpace(content)) == 0 {
		root = yaml.Node{
			Kind:        yaml.DocumentNode,
			HeadComment: strings.TrimSpace(userSkeleton),
			Content:     []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	} else if err := yaml.Unmarshal(content, &root); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigRead, "cannot parse "+d.name+" document").WithFile(d.path)
	}
	mapping, err := d.rootMapping(&root, key)
	if err != nil {
		return err
	}

	if err := setPath(mapping, strings.Split(key, "."), value); err != nil {
		return d.shapeError(key, err.Error())
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return errors.NewInternalError(errors.ErrCodeConfigWrite, "cannot encode "+d.name+" document", err)
	}
	if err := enc.Close(); err != nil {
		return errors.NewInternalError(errors.ErrCodeConfigWrite, "cannot encode "+d.name+" document", err)
	}

	if err := fsutil.WriteFileAtomic(d.path, buf.Bytes(), 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeConfigWrite, "cannot write "+d.name+" document", err).WithFile(d.path)
	}

	return d.reload()
}

// rootMapping returns the top-level mapping node, creating one for an empty
// document.
func (d *Document) rootMapping(root *yaml.Node, key string) (*yaml.Node, error) {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
	}
	if len(root.Content) == 0 {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		top.Kind = yaml.MappingNode
		top.Tag = "!!map"
		top.Value = ""
	}
	if top.Kind != yaml.MappingNode {
		return nil, d.shapeError(key, "document root is not a mapping")
	}
	return top, nil
}

// setPath walks mapping along path, creating mappings for missing segments,
// and stores value at the last segment.
func setPath(mapping *yaml.Node, path []string, value interface{}) error {
	node := mapping
	for i, seg := range path {
		last := i == len(path)-1

		var child *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == seg {
				child = node.Content[j+1]
				break
			}
		}

		if last {
			var encoded yaml.Node
			if err := encoded.Encode(value); err != nil {
				return fmt.Errorf("cannot encode value: %w", err)
			}
			if encoded.Kind != yaml.ScalarNode {
				return fmt.Errorf("only scalar values can be set")
			}
			if child == nil {
				node.Content = append(node.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg},
					&encoded)
				return nil
			}
			if child.Kind == yaml.MappingNode || child.Kind == yaml.SequenceNode {
				return fmt.Errorf("'%s' holds a collection, expected a scalar", strings.Join(path, "."))
			}
			comment := child.LineComment
			*child = encoded
			child.LineComment = comment
			return nil
		}

		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg},
				child)
		} else if child.Kind == yaml.ScalarNode && child.Tag == "!!null" {
			child.Kind = yaml.MappingNode
			child.Tag = "!!map"
			child.Value = ""
		} else if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is a scalar, expected a mapping", strings.Join(path[:i+1], "."))
		}
		node = child
	}
	return nil
}
