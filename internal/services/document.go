package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/inform/internal/models"
)

// FormDocument bundles a form with its responses for offline use.
type FormDocument struct {
	Form        models.Form               `json:"form" yaml:"form"`
	Responses   []*models.Response        `json:"responses,omitempty" yaml:"responses,omitempty"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard,omitempty" yaml:"leaderboard,omitempty"`
}

// LoadFormDocument reads a .json, .yaml or .yml bundle from disk.
func LoadFormDocument(path string) (*FormDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := DecodeFormDocument(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// DecodeFormDocument parses a bundle. A file holding only a form, without the
// "form" wrapper, is accepted too.
func DecodeFormDocument(data []byte, ext string) (*FormDocument, error) {
	var doc FormDocument
	switch strings.ToLower(ext) {
	case ".json":
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, NewInvalidError("invalid JSON: " + err.Error())
		}
		target := any(&doc)
		if _, wrapped := probe["form"]; !wrapped {
			target = &doc.Form
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, NewInvalidError("invalid JSON: " + err.Error())
		}
	case ".yaml", ".yml":
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, NewInvalidError("invalid YAML: " + err.Error())
		}
		target := any(&doc)
		if !hasYAMLKey(&root, "form") {
			target = &doc.Form
		}
		if err := root.Decode(target); err != nil {
			return nil, NewInvalidError("invalid YAML: " + err.Error())
		}
	default:
		return nil, NewInvalidError(fmt.Sprintf("unsupported document type %q (want .json, .yaml or .yml)", ext))
	}
	return &doc, nil
}

func hasYAMLKey(root *yaml.Node, key string) bool {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// EncodeFormDocument renders a bundle as JSON or YAML depending on ext.
func EncodeFormDocument(doc *FormDocument, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, NewInvalidError(fmt.Sprintf("unsupported document type %q", ext))
	}
}

// SaveFormDocument writes a bundle, choosing the format from the file extension.
func SaveFormDocument(path string, doc *FormDocument) error {
	b, err := EncodeFormDocument(doc, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
