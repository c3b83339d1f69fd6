package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultTemplate is created on startup when missing so there is
// always a known-good property set to fall back to.
const DefaultTemplate = "default"

var templatesFolderOverride string

// SetTemplatesFolder overrides where templates live. Tests use this.
func SetTemplatesFolder(folder string) {
	templatesFolderOverride = folder
}

// TemplatesFolder returns the directory that holds settings templates.
func TemplatesFolder() string {
	if templatesFolderOverride != "" {
		return templatesFolderOverride
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "ueport", "templates")
}

func templatePath(name string) string {
	return filepath.Join(TemplatesFolder(), name+".yaml")
}

// SaveTemplate writes the property set to a named YAML template.
func SaveTemplate(name string, p *Properties) error {
	if err := os.MkdirAll(TemplatesFolder(), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create templates folder")
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal template %q", name)
	}
	return ioutil.WriteFile(templatePath(name), data, 0666)
}

// LoadTemplate reads a named template back into a property set.
func LoadTemplate(name string) (*Properties, error) {
	data, err := ioutil.ReadFile(templatePath(name))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read template %q", name)
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "Failed to unmarshal template %q", name)
	}
	return p, nil
}

// ListTemplates returns the names of the saved templates, sorted.
func ListTemplates() []string {
	entries, err := ioutil.ReadDir(TemplatesFolder())
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// CreateDefaultTemplate writes the default template if it is missing.
func CreateDefaultTemplate() error {
	if _, err := os.Stat(templatePath(DefaultTemplate)); err == nil {
		return nil
	}
	return SaveTemplate(DefaultTemplate, Default())
}
