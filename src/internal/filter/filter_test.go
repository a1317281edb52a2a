// FILE: logship/src/internal/filter/filter_test.go
package filter

import (
	"testing"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultIgnore     = "$^"
	defaultCloudTrail = `.*_CloudTrail_.*\.json.gz$`
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNew(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessWithDefaults", func(t *testing.T) {
		c, err := New(defaultIgnore, defaultCloudTrail, logger)
		assert.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("ErrorInvalidIgnore", func(t *testing.T) {
		c, err := New("[", defaultCloudTrail, logger)
		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})

	t.Run("ErrorInvalidCloudTrail", func(t *testing.T) {
		c, err := New(defaultIgnore, "(", logger)
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestClassifier_Classify(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name     string
		ignore   string
		key      string
		expected Kind
	}{
		{
			name:     "PlainLog",
			ignore:   defaultIgnore,
			key:      "logs/2024/01/app.log",
			expected: KindPlain,
		},
		{
			name:     "CloudTrail",
			ignore:   defaultIgnore,
			key:      "AWSLogs/123456789012/CloudTrail/us-east-1/2021/01/01/123456789012_CloudTrail_us-east-1_20210101T0000Z_abc.json.gz",
			expected: KindCloudTrail,
		},
		{
			name:     "Digest",
			ignore:   defaultIgnore,
			key:      "AWSLogs/123456789012/CloudTrail-Digest/us-east-1/2021/01/01/123456789012_CloudTrail-Digest_us-east-1_20210101T0000Z.json.gz",
			expected: KindDigest,
		},
		{
			name:     "IgnoredByPattern",
			ignore:   "ignored/.*",
			key:      "ignored/app.log",
			expected: KindIgnored,
		},
		{
			name:     "IgnoreTakesPrecedenceOverDigest",
			ignore:   "AWSLogs/.*",
			key:      "AWSLogs/1_CloudTrail-Digest_x.json.gz",
			expected: KindIgnored,
		},
		{
			name:     "IgnoreMatchesAnywhereInKey",
			ignore:   "ignored",
			key:      "logs/ignored/app.log",
			expected: KindIgnored,
		},
		{
			name:     "IgnoreBySuffix",
			ignore:   `\.tmp$`,
			key:      "logs/a.tmp",
			expected: KindIgnored,
		},
		{
			name:     "IgnoreAnchoredAtStart",
			ignore:   "^ignored/",
			key:      "logs/ignored/app.log",
			expected: KindPlain,
		},
		{
			name:     "DefaultIgnoreMatchesNothing",
			ignore:   defaultIgnore,
			key:      "anything",
			expected: KindPlain,
		},
		{
			name:     "CloudTrailUncompressedIsPlain",
			ignore:   defaultIgnore,
			key:      "1_CloudTrail_x.json",
			expected: KindPlain,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.ignore, defaultCloudTrail, logger)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c.Classify(tc.key))
		})
	}
}

func TestClassifier_UnanchoredCloudTrailPattern(t *testing.T) {
	c, err := New(defaultIgnore, "CloudTrail", newTestLogger())
	require.NoError(t, err)

	assert.Equal(t, KindCloudTrail, c.Classify("AWSLogs/123_CloudTrail_x.json.gz"))
	assert.Equal(t, KindPlain, c.Classify("logs/app.log"))
}

func TestClassifier_GetStats(t *testing.T) {
	c, err := New("skip/.*", defaultCloudTrail, newTestLogger())
	require.NoError(t, err)

	c.Classify("skip/a.log")
	c.Classify("keep/a.log")
	c.Classify("1_CloudTrail-Digest_x.json.gz")
	c.Classify("1_CloudTrail_x.json.gz")

	stats := c.GetStats()
	assert.Equal(t, uint64(4), stats["total_classified"])
	assert.Equal(t, uint64(1), stats["total_ignored"])
	assert.Equal(t, uint64(1), stats["total_digest"])
	assert.Equal(t, uint64(1), stats["total_cloudtrail"])
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "plain", KindPlain.String())
	assert.Equal(t, "ignored", KindIgnored.String())
	assert.Equal(t, "digest", KindDigest.String())
	assert.Equal(t, "cloudtrail", KindCloudTrail.String())
}
