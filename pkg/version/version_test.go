package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/scoredash/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	version.InitBinaryVersion()

	got := version.String()

	assert.True(t, strings.HasPrefix(got, "scoredash "))
	assert.Contains(t, got, "commit: ")
	assert.NotEmpty(t, version.Version)
}
