// FILE: logship/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/lixenwraith/log"
)

// DigestPattern matches CloudTrail digest files, which carry no log events
const DigestPattern = `.*_CloudTrail-Digest_.*\.json.gz$`

// Kind is the handling class of an object key
type Kind int

const (
	KindPlain Kind = iota
	KindIgnored
	KindDigest
	KindCloudTrail
)

func (k Kind) String() string {
	switch k {
	case KindIgnored:
		return "ignored"
	case KindDigest:
		return "digest"
	case KindCloudTrail:
		return "cloudtrail"
	default:
		return "plain"
	}
}

// Classifier decides how an object key is handled
type Classifier struct {
	ignore     *regexp.Regexp
	cloudTrail *regexp.Regexp
	digest     *regexp.Regexp
	logger     *log.Logger

	// Statistics
	totalClassified atomic.Uint64
	totalIgnored    atomic.Uint64
	totalDigest     atomic.Uint64
	totalCloudTrail atomic.Uint64
}

// New creates a classifier from the ignore and CloudTrail patterns
func New(ignorePattern, cloudTrailPattern string, logger *log.Logger) (*Classifier, error) {
	ignore, err := compile(ignorePattern)
	if err != nil {
		return nil, err
	}
	cloudTrail, err := compile(cloudTrailPattern)
	if err != nil {
		return nil, err
	}
	digest, err := compile(DigestPattern)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		ignore:     ignore,
		cloudTrail: cloudTrail,
		digest:     digest,
		logger:     logger,
	}

	logger.Debug("msg", "Classifier created",
		"component", "filter",
		"ignore_pattern", ignorePattern,
		"cloudtrail_pattern", cloudTrailPattern)

	return c, nil
}

// Classify checks the key against the ignore, digest and CloudTrail patterns
// in that order. A pattern matches anywhere in the key unless it is anchored.
func (c *Classifier) Classify(key string) Kind {
	c.totalClassified.Add(1)

	kind := KindPlain
	switch {
	case c.ignore.MatchString(key):
		kind = KindIgnored
		c.totalIgnored.Add(1)
	case c.digest.MatchString(key):
		kind = KindDigest
		c.totalDigest.Add(1)
	case c.cloudTrail.MatchString(key):
		kind = KindCloudTrail
		c.totalCloudTrail.Add(1)
	}

	c.logger.Debug("msg", "Object key classified",
		"component", "filter",
		"key", key,
		"kind", kind.String())
	return kind
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
	}
	return re, nil
}

// GetStats returns classifier statistics
func (c *Classifier) GetStats() map[string]any {
	return map[string]any{
		"total_classified": c.totalClassified.Load(),
		"total_ignored":    c.totalIgnored.Load(),
		"total_digest":     c.totalDigest.Load(),
		"total_cloudtrail": c.totalCloudTrail.Load(),
	}
}
