// Package assets loads the static lookup tables used by the dashboard:
// condition warnings, icon URLs and background images.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"weather-dashboard/models"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

const (
	warningsFile    = "warnings.yaml"
	iconsFile       = "icons.yaml"
	backgroundsFile = "backgrounds.yaml"
)

// WarningEntry mirrors one record of the warnings table
type WarningEntry struct {
	WarningLevel struct {
		Level   models.WarningTier `yaml:"level" json:"level"`
		Warning string             `yaml:"warning" json:"warning"`
	} `yaml:"warningLevel" json:"warningLevel"`
}

// Tables holds the loaded lookup tables. Load it before serving the first request.
type Tables struct {
	warnings    map[string]WarningEntry
	icons       map[string]string
	backgrounds map[string]string
	logger      *slog.Logger
}

// Load reads the tables from dir. Files missing from dir fall back to the embedded defaults;
// an empty dir uses the defaults only. The files are YAML, so JSON tables load as well.
func Load(dir string, logger *slog.Logger) (*Tables, error) {
	if logger == nil {
		logger = slog.Default()
	}

	defaults, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, err
	}

	t := &Tables{logger: logger}
	if err := loadTable(dir, defaults, warningsFile, &t.warnings, logger); err != nil {
		return nil, err
	}
	if err := loadTable(dir, defaults, iconsFile, &t.icons, logger); err != nil {
		return nil, err
	}
	if err := loadTable(dir, defaults, backgroundsFile, &t.backgrounds, logger); err != nil {
		return nil, err
	}

	for key, entry := range t.warnings {
		if !entry.WarningLevel.Level.Valid() {
			return nil, fmt.Errorf("%s: entry %q has invalid level %q", warningsFile, key, entry.WarningLevel.Level)
		}
	}

	logger.Info("asset tables loaded",
		"warnings", len(t.warnings),
		"icons", len(t.icons),
		"backgrounds", len(t.backgrounds),
	)
	return t, nil
}

// NewTables builds tables from in-memory maps
func NewTables(warnings map[string]WarningEntry, icons, backgrounds map[string]string, logger *slog.Logger) *Tables {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tables{warnings: warnings, icons: icons, backgrounds: backgrounds, logger: logger}
}

func loadTable[T any](dir string, defaults fs.FS, name string, out *map[string]T, logger *slog.Logger) error {
	var data []byte
	var err error

	if dir != "" {
		data, err = os.ReadFile(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err != nil {
			logger.Warn("asset table not found, using embedded default", "file", name, "dir", dir)
		}
	}
	if data == nil {
		data, err = fs.ReadFile(defaults, name)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", name, err)
		}
	}

	table := make(map[string]T)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*out = table
	return nil
}

// Warning looks up a condition code or synthetic key in the warnings table
func (t *Tables) Warning(key string) (models.Warning, error) {
	entry, ok := t.warnings[key]
	if !ok {
		return models.Warning{}, &models.LookupMissError{Table: "warning", Key: key}
	}
	return models.Warning{
		Key:     key,
		Tier:    entry.WarningLevel.Level,
		Message: entry.WarningLevel.Warning,
	}, nil
}

// IconURL returns the icon for a provider icon id, or "" when the table has none
func (t *Tables) IconURL(iconID string) string {
	url, ok := t.icons[iconID]
	if !ok {
		t.logger.Warn("icon lookup miss", "error", &models.LookupMissError{Table: "icon", Key: iconID})
		return ""
	}
	return url
}

// BackgroundURL returns the background image for a provider icon id.
// A miss returns "" and the presentation layer keeps its default background.
func (t *Tables) BackgroundURL(iconID string) string {
	url, ok := t.backgrounds[iconID]
	if !ok {
		t.logger.Warn("background lookup miss", "error", &models.LookupMissError{Table: "background", Key: iconID})
		return ""
	}
	return url
}
