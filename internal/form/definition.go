// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file that lists its identifier,
//   title, submit label, and fields.  Components embed their
//   “forms/*.yaml” files and hand the FS to RegisterForms during Init.  The
//   renderer and the form widget fetch definitions from this registry by
//   ID, guaranteeing a single source of truth for markup.
//
//   Definitions only drive markup and HTML5 hints.  The authoritative rules
//   live on the value objects in values.go and run server-side through
//   Validate.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  LoadFormDef parses a single YAML file and validates structural rules.
//   •  RegisterForms walks an fs.FS, loads every “*.yaml”, and adds the
//      result to the registry.  Later registrations override earlier ones.
//   •  GetFormDef offers safe, read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The ID is namespaced by component, e.g. “auth/login”.
type FormDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Submit string     `yaml:"submit"` // Button label, defaults to “Submit”.
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control on the form.
type FieldDef struct {
	Name         string `yaml:"name"`        // Submission key.  Required.
	Label        string `yaml:"label"`       // Human-readable label.  Required.
	Type         string `yaml:"type"`        // text, email, password, date, tel, textarea.
	Placeholder  string `yaml:"placeholder"` // Optional placeholder text.
	Required     bool   `yaml:"required"`
	MinLength    int    `yaml:"minlength"` // ≥ 0, 0 means unset.
	MaxLength    int    `yaml:"maxlength"` // ≥ 0, 0 means unset.
	Pattern      string `yaml:"pattern"`
	Autocomplete string `yaml:"autocomplete"`
}

var fieldTypes = map[string]bool{
	"text": true, "email": true, "password": true,
	"date": true, "tel": true, "textarea": true,
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.  The boolean is false when the
// ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file from fsys and returns a populated FormDef.
// It NEVER mutates the global registry.
func LoadFormDef(fsys fs.FS, name string) (*FormDef, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", name, err)
	}

	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if fd.Submit == "" {
		fd.Submit = "Submit"
	}

	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterForms loads every “*.yaml” in fsys and registers it, together with
// a form widget of the same ID.
func RegisterForms(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}
		fd, err := LoadFormDef(fsys, p)
		if err != nil {
			return err // fail fast so issues surface loudly.
		}
		register(fd)
		return nil
	})
}

func register(fd *FormDef) {
	registryMu.Lock()
	registry[fd.ID] = fd
	registryMu.Unlock()
	injectWidgetRegistration(fd)
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", name)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, name); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func validateField(f *FieldDef, name string) error {
	switch {
	case f.Name == "":
		return fmt.Errorf("form %s: field missing 'name'", name)
	case strings.HasPrefix(f.Name, "csrf_") || f.Name == "form_id" || f.Name == "action":
		return fmt.Errorf("form %s: field name '%s' is reserved", name, f.Name)
	case f.Label == "":
		return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
	case !fieldTypes[f.Type]:
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", name, f.Name, f.Type)
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", name, f.Name, err)
		}
	}
	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", name, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", name, f.Name)
	}
	return nil
}
