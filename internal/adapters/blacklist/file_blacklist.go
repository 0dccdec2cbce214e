package blacklist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// placeholderLists is written when no blacklist file exists yet
var placeholderLists = map[string][]string{
	"phishing": {"phishing-example.com"},
	"malware":  {"malware-example.com"},
	"scam":     {"scam-example.com"},
}

// FileBlacklist maps listed domains to their category. It is loaded once and
// read-only afterwards.
type FileBlacklist struct {
	categories map[string]string
	logger     *zap.Logger
}

// Load reads a category -> domains mapping from path. JSON files are valid
// YAML and load the same way. A missing file is created with placeholder
// entries.
func Load(path string, logger *zap.Logger) (*FileBlacklist, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Blacklist file not found, creating placeholder", zap.String("path", path))
		if err := writePlaceholder(path); err != nil {
			return nil, err
		}
		return New(placeholderLists, logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist file: %w", err)
	}

	var lists map[string][]string
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist file %s: %w", path, err)
	}

	return New(lists, logger), nil
}

// New builds a blacklist from a category -> domains mapping. A domain listed
// under several categories reports the alphabetically first one.
func New(lists map[string][]string, logger *zap.Logger) *FileBlacklist {
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make(map[string]string)
	for _, name := range names {
		for _, domain := range lists[name] {
			domain = normalize(domain)
			if domain == "" {
				continue
			}
			if _, seen := categories[domain]; !seen {
				categories[domain] = name
			}
		}
	}

	logger.Info("Loaded domain blacklist",
		zap.Int("categories", len(names)),
		zap.Int("domains", len(categories)))

	return &FileBlacklist{
		categories: categories,
		logger:     logger,
	}
}

// Lookup returns the category of an exactly listed domain
func (b *FileBlacklist) Lookup(domain string) (string, bool) {
	domain = normalize(domain)
	category, ok := b.categories[domain]
	if ok {
		b.logger.Debug("Blacklisted domain matched",
			zap.String("domain", domain),
			zap.String("category", category))
	}
	return category, ok
}

func normalize(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

func writePlaceholder(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create blacklist directory: %w", err)
		}
	}

	data, err := yaml.Marshal(placeholderLists)
	if err != nil {
		return fmt.Errorf("failed to encode placeholder blacklist: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write placeholder blacklist: %w", err)
	}
	return nil
}
