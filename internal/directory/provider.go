package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/ayusutra-api/internal/model"
)

// Provider supplies the ordered doctor list at start-up.
type Provider interface {
	Doctors(ctx context.Context) ([]model.Doctor, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]model.Doctor, error)

func (f ProviderFunc) Doctors(ctx context.Context) ([]model.Doctor, error) {
	return f(ctx)
}

// StaticProvider serves a fixed list.
type StaticProvider struct {
	doctors []model.Doctor
}

func NewStaticProvider(doctors []model.Doctor) *StaticProvider {
	return &StaticProvider{doctors: doctors}
}

func (p *StaticProvider) Doctors(_ context.Context) ([]model.Doctor, error) {
	out := make([]model.Doctor, len(p.doctors))
	copy(out, p.doctors)
	return out, nil
}

// FileProvider reads a YAML or JSON seed file. JSON is valid YAML, so one
// decoder handles both.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

type seedFile struct {
	Doctors []model.Doctor `yaml:"doctors"`
}

func (p *FileProvider) Doctors(_ context.Context) ([]model.Doctor, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read doctor seed %s: %w", p.path, err)
	}

	// A bare list is accepted as well as {doctors: [...]}.
	ext := strings.ToLower(filepath.Ext(p.path))
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") || (ext != ".json" && strings.HasPrefix(trimmed, "-")) {
		var list []model.Doctor
		if err := yaml.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode doctor seed %s: %w", p.path, err)
		}
		return list, nil
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to decode doctor seed %s: %w", p.path, err)
	}
	return seed.Doctors, nil
}
