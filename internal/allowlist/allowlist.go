package allowlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a link domain is trusted
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase, no trailing dot)
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
		if domain != "" {
			normalizedDomains = append(normalizedDomains, domain)
		}
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized domain allowlist", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsTrusted checks if the domain, or a parent of it, is on the allowlist
func (c *Checker) IsTrusted(domain string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	for _, trusted := range c.domains {
		if domain == trusted || strings.HasSuffix(domain, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Domain is trusted",
					zap.String("domain", domain),
					zap.String("entry", trusted))
			}
			return true
		}
	}

	return false
}
