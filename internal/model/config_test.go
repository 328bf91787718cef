package model_test

import (
	"strings"
	"testing"

	"github.com/certhound/certhound/internal/model"
	"github.com/stretchr/testify/require"
)

func Test_LoadConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		yaml     string
		then     func(t *testing.T, c model.Config, err error)
	}{
		{
			scenario: "minimal filesystem config",
			yaml: `
version: 0
filesystem:
  enabled: true
  paths: ["/etc/ssl"]
`,
			then: func(t *testing.T, c model.Config, err error) {
				require.NoError(t, err)
				require.True(t, c.Filesystem.Enabled)
				require.Equal(t, []string{"/etc/ssl"}, c.Filesystem.Paths)
			},
		},
		{
			scenario: "containers with images",
			yaml: `
version: 0
containers:
  enabled: true
  images: ["alpine:3.20"]
service:
  workers: 2
  verbose: true
`,
			then: func(t *testing.T, c model.Config, err error) {
				require.NoError(t, err)
				require.Equal(t, []string{"alpine:3.20"}, c.Containers.Images)
				require.Equal(t, 2, c.WorkerLimit())
				require.True(t, c.Service.Verbose)
			},
		},
		{
			scenario: "unsupported version",
			yaml:     `version: 42`,
			then: func(t *testing.T, _ model.Config, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "version 42")
			},
		},
		{
			scenario: "containers enabled without images",
			yaml: `
version: 0
containers:
  enabled: true
`,
			then: func(t *testing.T, _ model.Config, err error) {
				require.Error(t, err)
			},
		},
		{
			scenario: "unknown field rejected",
			yaml: `
version: 0
filesystme:
  enabled: true
`,
			then: func(t *testing.T, _ model.Config, err error) {
				require.Error(t, err)
			},
		},
		{
			scenario: "negative workers rejected",
			yaml: `
version: 0
service:
  workers: -1
`,
			then: func(t *testing.T, _ model.Config, err error) {
				require.Error(t, err)
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			c, err := model.LoadConfig(strings.NewReader(tt.yaml))
			tt.then(t, c, err)
		})
	}
}

func Test_DefaultConfig(t *testing.T) {
	t.Parallel()

	c := model.DefaultConfig()
	require.NoError(t, c.Validate())
	require.True(t, c.Filesystem.Enabled)
	require.False(t, c.Containers.Enabled)
	require.Positive(t, c.WorkerLimit())
}
