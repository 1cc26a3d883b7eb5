package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace-local manifest file name.
const FileName = ".groundwork.yml"

// Backend names accepted in the manifest and on the command line.
const (
	BackendExec  = "exec"
	BackendGoGit = "gogit"
)

// DefaultBranches is the branch preference list used when a manifest names none.
var DefaultBranches = []string{"development", "master"}

//go:embed default.yml
var defaultManifest []byte

var (
	ErrNoRepositories  = errors.New("manifest lists no repositories")
	ErrDuplicateName   = errors.New("duplicate repository name")
	ErrInvalidName     = errors.New("repository name must be a single path segment")
	ErrMissingURL      = errors.New("repository has no primaryUrl")
	ErrUnknownBackend  = errors.New("unknown backend")
	ErrEmptyBranchName = errors.New("branch candidate is empty")
)

// RepositorySpec is one statically configured repository.
type RepositorySpec struct {
	Name        string `yaml:"name" json:"name"`
	PrimaryURL  string `yaml:"primaryUrl" json:"primaryUrl"`
	FallbackURL string `yaml:"fallbackUrl,omitempty" json:"fallbackUrl,omitempty"`
}

// URLs returns the remote addresses to try, in order.
func (s RepositorySpec) URLs() []string {
	if s.FallbackURL == "" || s.FallbackURL == s.PrimaryURL {
		return []string{s.PrimaryURL}
	}
	return []string{s.PrimaryURL, s.FallbackURL}
}

// Manifest represents the structure of .groundwork.yml
type Manifest struct {
	Branches     []string         `yaml:"branches"`
	Backend      string           `yaml:"backend"`
	Repositories []RepositorySpec `yaml:"repositories"`

	// Source is where the manifest was read from ("embedded" for the built-in one).
	Source string `yaml:"-"`
}

// Load finds and parses the workspace manifest.
//
// An explicit path wins and must exist. Otherwise the lookup falls back from
// the workspace directory to the user's XDG config directory and finally to
// the manifest embedded in the binary.
func Load(explicitPath, workspaceDir string) (*Manifest, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
		return Parse(data, explicitPath)
	}

	candidates := []string{filepath.Join(workspaceDir, FileName)}
	if userPath, err := xdg.SearchConfigFile(filepath.Join("groundwork", "manifest.yml")); err == nil {
		candidates = append(candidates, userPath)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}
		return Parse(data, path)
	}

	return Default()
}

// SampleSource is the Source of the manifest embedded in the binary.
const SampleSource = "embedded"

// Default returns the sample manifest embedded in the binary. Its remotes are
// placeholders.
func Default() (*Manifest, error) {
	return Parse(defaultManifest, SampleSource)
}

// IsSample reports whether m is the embedded sample manifest.
func (m *Manifest) IsSample() bool {
	return m.Source == SampleSource
}

// Parse decodes and validates manifest data, applying defaults.
func Parse(data []byte, source string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", source, err)
	}
	m.Source = source

	if len(m.Branches) == 0 {
		m.Branches = append([]string(nil), DefaultBranches...)
	}
	if m.Backend == "" {
		m.Backend = BackendExec
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", source, err)
	}
	return &m, nil
}

// Validate checks if the manifest is valid
func (m *Manifest) Validate() error {
	if len(m.Repositories) == 0 {
		return ErrNoRepositories
	}

	if err := ValidateBackend(m.Backend); err != nil {
		return err
	}

	for i, b := range m.Branches {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("branches[%d]: %w", i, ErrEmptyBranchName)
		}
	}

	seen := make(map[string]bool, len(m.Repositories))
	for i, repo := range m.Repositories {
		if !IsPathSegment(repo.Name) {
			return fmt.Errorf("repositories[%d] %q: %w", i, repo.Name, ErrInvalidName)
		}
		if seen[repo.Name] {
			return fmt.Errorf("repositories[%d] %q: %w", i, repo.Name, ErrDuplicateName)
		}
		seen[repo.Name] = true

		if repo.PrimaryURL == "" {
			return fmt.Errorf("repositories[%d] %q: %w", i, repo.Name, ErrMissingURL)
		}
	}

	return nil
}

// ValidateBackend reports whether name is a known backend.
func ValidateBackend(name string) error {
	switch name {
	case BackendExec, BackendGoGit:
		return nil
	default:
		return fmt.Errorf("%w %q (want %s or %s)", ErrUnknownBackend, name, BackendExec, BackendGoGit)
	}
}

// IsPathSegment reports whether name can be used as a single directory name.
func IsPathSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

// Select returns the specs whose names are listed, in manifest order.
// An empty names list selects every spec.
func (m *Manifest) Select(names []string) ([]RepositorySpec, error) {
	if len(names) == 0 {
		return m.Repositories, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []RepositorySpec
	for _, repo := range m.Repositories {
		if wanted[repo.Name] {
			selected = append(selected, repo)
			delete(wanted, repo.Name)
		}
	}

	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for _, n := range names {
			if wanted[n] {
				unknown = append(unknown, n)
			}
		}
		return nil, fmt.Errorf("unknown repository: %s", strings.Join(unknown, ", "))
	}

	return selected, nil
}
