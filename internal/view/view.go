// Package view persists named dashboard parameter sets.
package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/utils"
)

const fileExt = ".json"

// ErrNotFound is returned when no view with the given name exists.
var ErrNotFound = errors.New("view not found")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// View is a saved set of dashboard parameters. Zero fields inherit the
// configured defaults.
type View struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Description       string              `json:"description,omitempty"`
	Range             *analysis.RankRange `json:"range,omitempty"`
	Songs             []string            `json:"songs,omitempty"`
	TopN              int                 `json:"top_n,omitempty"`
	HeatmapMaxArtists int                 `json:"heatmap_max_artists,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	// Not serialized: directory holding the view file
	dir string `json:"-"`
}

// ValidateName rejects names that cannot be used as a file name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid view name %q: use letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

// New constructs an in-memory view. Call Save() to persist.
func New(name, description, dir string) *View {
	now := time.Now()
	return &View{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
		dir:         dir,
	}
}

// Validate checks the stored parameters.
func (v *View) Validate() error {
	if err := ValidateName(v.Name); err != nil {
		return err
	}
	if v.Range != nil {
		if err := v.Range.Validate(); err != nil {
			return err
		}
	}
	if v.TopN < 0 {
		return fmt.Errorf("top_n must be >= 0, got %d", v.TopN)
	}
	if v.HeatmapMaxArtists < 0 {
		return fmt.Errorf("heatmap_max_artists must be >= 0, got %d", v.HeatmapMaxArtists)
	}
	return nil
}

// Path returns the on-disk location of the view file.
func (v *View) Path() string { return filepath.Join(v.dir, v.Name+fileExt) }

// Save writes the view using an atomic write.
func (v *View) Save() error {
	if v.dir == "" {
		return errors.New("view directory not set")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if err := utils.EnsureDir(v.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	v.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(v.Path(), data)
}

// Load reads the named view from dir.
func Load(dir, name string) (*View, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name+fileExt)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read view: %w", err)
	}
	var v View
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse view %s: %w", name, err)
	}
	v.dir = dir
	return &v, nil
}

// List returns all readable views in dir sorted by name. A missing dir yields none.
func List(dir string) ([]*View, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read views dir: %w", err)
	}
	var out []*View
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		v, err := Load(dir, strings.TrimSuffix(e.Name(), fileExt))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the named view.
func Delete(dir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, name+fileExt)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete view: %w", err)
	}
	return nil
}
