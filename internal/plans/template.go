package plans

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Template configuration keys.
const (
	keyDefaultElevation = "default_elevation"
	planKeyPrefix       = "plan_"
)

// TemplateConfigPath returns the configuration file that accompanies a
// drawing template: the template path with its extension replaced by
// ".config".
func TemplateConfigPath(templatePath string) string {
	return strings.TrimSuffix(templatePath, filepath.Ext(templatePath)) + ".config"
}

// LoadTemplate reads the configuration next to templatePath. The file holds
// key=value lines; default_elevation sets the elevation for new plans and
// each plan_<name>=<path> attaches a plan not already present. Template keys
// are case-insensitive, so plan names from a template are lower case and an
// existing plan matches regardless of case. A missing configuration file is
// not an error.
func (m *Manager) LoadTemplate(templatePath string) error {
	configPath := TemplateConfigPath(templatePath)
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		m.mu.Lock()
		m.templatePath = templatePath
		m.mu.Unlock()
		return nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("dotenv")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read template config %s: %w", configPath, err)
	}

	elevation := v.GetString(keyDefaultElevation)
	if elevation != "" && !ValidElevation(elevation) {
		return fmt.Errorf("%w: template default %q", types.ErrInvalidElevation, elevation)
	}

	keys := v.AllKeys()
	slices.Sort(keys)

	m.mu.Lock()
	m.templatePath = templatePath
	if elevation != "" {
		m.defaultElevation = elevation
	}
	m.mu.Unlock()

	attached := 0
	for _, key := range keys {
		name, ok := strings.CutPrefix(key, planKeyPrefix)
		if !ok || name == "" {
			continue
		}
		if m.hasPlanFold(name) {
			continue
		}
		if _, err := m.Attach(types.Plan{Name: name, Path: v.GetString(key)}); err != nil {
			return fmt.Errorf("template plan %q: %w", name, err)
		}
		attached++
	}

	m.hub.Publish(types.EventPlanTemplateLoaded, templatePath, fmt.Sprintf("%d plans", attached))
	return nil
}

// TemplatePath returns the template most recently loaded.
func (m *Manager) TemplatePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templatePath
}

// SaveTemplate writes the default elevation and every plan path to the
// configuration file next to templatePath.
func (m *Manager) SaveTemplate(templatePath string) error {
	configPath := TemplateConfigPath(templatePath)
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create template config: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# takeoff template configuration")
	fmt.Fprintf(w, "%s=%s\n", keyDefaultElevation, m.DefaultElevation())
	seen := make(map[string]string)
	for _, p := range m.All() {
		if !templateKey(p.Name) {
			m.logger.Warn("plan name cannot be stored in a template", zap.String("plan", p.Name))
			continue
		}
		folded := strings.ToLower(p.Name)
		if prev, dup := seen[folded]; dup {
			m.logger.Warn("plan name collides with another in a template",
				zap.String("plan", p.Name), zap.String("kept", prev))
			continue
		}
		seen[folded] = p.Name
		fmt.Fprintf(w, "%s%s=%s\n", planKeyPrefix, p.Name, p.Path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write template config: %w", err)
	}
	return f.Close()
}

func (m *Manager) hasPlanFold(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for existing := range m.plans {
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}

// templateKey reports whether name can follow the plan_ prefix. Only ASCII
// letters, digits and underscores survive the key=value format.
func templateKey(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
