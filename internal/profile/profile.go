package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the sender identity woven into drafting prompts.
type Profile struct {
	Name    string `yaml:"name"`
	Alias   string `yaml:"alias,omitempty"`
	Title   string `yaml:"title,omitempty"`
	Company string `yaml:"company,omitempty"`
	Email   string `yaml:"email,omitempty"`
	Phone   string `yaml:"phone,omitempty"`
	Website string `yaml:"website,omitempty"`
}

// Empty reports whether nothing identifying has been set.
func (p Profile) Empty() bool {
	return p == Profile{}
}

// Render formats the profile as labelled lines for prompt construction.
func (p Profile) Render() string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Name", p.Name)
	add("Alias", p.Alias)
	add("Title", p.Title)
	add("Company", p.Company)
	add("Email", p.Email)
	add("Phone", p.Phone)
	add("Website", p.Website)
	return strings.Join(lines, "\n")
}

// Set assigns the field named by key. Unknown keys report false.
func (p *Profile) Set(key, value string) bool {
	switch strings.ToLower(key) {
	case "name":
		p.Name = value
	case "alias":
		p.Alias = value
	case "title":
		p.Title = value
	case "company":
		p.Company = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "website":
		p.Website = value
	default:
		return false
	}
	return true
}

// DefaultPath returns ~/.config/hedwig/profile.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hedwig", "profile.yaml"), nil
}

// Load reads a profile from path; a missing file yields an empty profile.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Save writes the profile to path, creating directories as needed.
func Save(path string, p Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
