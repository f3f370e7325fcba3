package scrolls

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"hedwig/internal/domain"
)

// LoadWarning records one skipped scroll document. Loading is tolerant of
// individual bad files: the corpus is community-curated, so a single
// malformed document must never abort the load.
type LoadWarning struct {
	Path   string
	Reason string
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// Loader reads the scroll corpus from a directory tree.
type Loader struct {
	dir        string
	maxScrolls int
	log        *slog.Logger
}

// NewLoader creates a corpus loader rooted at dir. maxScrolls <= 0 means no
// limit.
func NewLoader(dir string, maxScrolls int, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{dir: dir, maxScrolls: maxScrolls, log: log}
}

// Load walks the corpus directory and parses every scroll document, yielding
// one Scroll per valid file plus a warning per skipped one. Documents are
// visited in lexical path order, which fixes corpus insertion order across
// runs. Load never mutates source files and is idempotent.
func (l *Loader) Load() ([]domain.Scroll, []LoadWarning, error) {
	var paths []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking scroll corpus %s: %w", l.dir, err)
	}

	var (
		loaded   []domain.Scroll
		warnings []LoadWarning
		seen     = map[string]string{}
	)
	for _, path := range paths {
		if l.maxScrolls > 0 && len(loaded) >= l.maxScrolls {
			l.log.Warn("reached scroll limit, ignoring remaining documents", "limit", l.maxScrolls)
			break
		}
		scroll, err := l.loadOne(path)
		if err != nil {
			warnings = append(warnings, LoadWarning{Path: path, Reason: err.Error()})
			l.log.Warn("skipping scroll", "path", path, "reason", err)
			continue
		}
		if prev, dup := seen[scroll.ID]; dup {
			warnings = append(warnings, LoadWarning{Path: path, Reason: "duplicate scroll id " + scroll.ID + " (first seen at " + prev + ")"})
			l.log.Warn("skipping scroll", "path", path, "reason", "duplicate id")
			continue
		}
		seen[scroll.ID] = path
		loaded = append(loaded, scroll)
	}
	l.log.Info("scroll corpus loaded", "dir", l.dir, "scrolls", len(loaded), "skipped", len(warnings))
	return loaded, warnings, nil
}

// document mirrors the on-disk scroll layout: metadata, template, guidance.
type document struct {
	Metadata struct {
		Tags        []string `yaml:"tags"`
		UseCase     string   `yaml:"use_case"`
		Tone        string   `yaml:"tone"`
		Industry    string   `yaml:"industry"`
		Role        string   `yaml:"role"`
		Difficulty  string   `yaml:"difficulty"`
		Author      string   `yaml:"author"`
		DateCreated string   `yaml:"date_created"`
		SuccessRate *float64 `yaml:"success_rate"`
		Notes       string   `yaml:"notes"`
	} `yaml:"metadata"`
	Template struct {
		Subject string `yaml:"subject"`
		Content string `yaml:"content"`
	} `yaml:"template"`
	Guidance struct {
		AvoidPhrases     []string `yaml:"avoid_phrases"`
		PreferredPhrases []string `yaml:"preferred_phrases"`
		WritingTips      []string `yaml:"writing_tips"`
	} `yaml:"guidance"`
}

func (l *Loader) loadOne(path string) (domain.Scroll, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Scroll{}, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Scroll{}, fmt.Errorf("malformed yaml: %v", err)
	}
	if err := validate(doc); err != nil {
		return domain.Scroll{}, err
	}

	rel, err := filepath.Rel(l.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	scroll := domain.Scroll{
		ID:      filepath.ToSlash(rel),
		Path:    path,
		Subject: doc.Template.Subject,
		Body:    doc.Template.Content,
		Metadata: domain.Metadata{
			Tags:        doc.Metadata.Tags,
			UseCase:     doc.Metadata.UseCase,
			Tone:        doc.Metadata.Tone,
			Industry:    doc.Metadata.Industry,
			Role:        doc.Metadata.Role,
			Difficulty:  doc.Metadata.Difficulty,
			Author:      doc.Metadata.Author,
			DateCreated: doc.Metadata.DateCreated,
			Notes:       doc.Metadata.Notes,
		},
		Guidance: domain.Guidance{
			AvoidPhrases:     doc.Guidance.AvoidPhrases,
			PreferredPhrases: doc.Guidance.PreferredPhrases,
			WritingTips:      doc.Guidance.WritingTips,
		},
	}
	if doc.Metadata.SuccessRate != nil {
		scroll.Metadata.SuccessRate = *doc.Metadata.SuccessRate
	}
	return scroll, nil
}

// validate checks the required metadata fields and the body. Violations are
// reported together so a curator can fix a document in one pass.
func validate(doc document) error {
	var violations []string
	if len(doc.Metadata.Tags) == 0 {
		violations = append(violations, "metadata.tags is required")
	}
	if doc.Metadata.UseCase == "" {
		violations = append(violations, "metadata.use_case is required")
	}
	if doc.Metadata.Tone == "" {
		violations = append(violations, "metadata.tone is required")
	}
	if doc.Metadata.Industry == "" {
		violations = append(violations, "metadata.industry is required")
	}
	if doc.Metadata.SuccessRate != nil && (*doc.Metadata.SuccessRate < 0 || *doc.Metadata.SuccessRate > 1) {
		violations = append(violations, "metadata.success_rate must be within [0, 1]")
	}
	if strings.TrimSpace(doc.Template.Content) == "" {
		violations = append(violations, "template.content must not be empty")
	}
	if len(violations) > 0 {
		return fmt.Errorf("invalid scroll: %s", strings.Join(violations, "; "))
	}
	return nil
}
