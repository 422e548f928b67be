package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/util/prerequisites"
)

func TestCluster_WithInjection(t *testing.T) {
	t.Run("installs the named cluster", func(t *testing.T) {
		saveAndRestoreFactories(t)
		env := testEnvironment(t)
		m := installMocks(t, env)

		getenv = mapGetenv(map[string]string{
			config.EnvPullSecret:   testPullSecret,
			config.EnvSSHPublicKey: testSSHKey(t),
		})

		err := Cluster(context.Background(), "democtl.yaml", "hub")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(env.ArtifactsDir, "hub")}, m.installer.created)
	})

	t.Run("installs every cluster when unnamed", func(t *testing.T) {
		saveAndRestoreFactories(t)
		env := testEnvironment(t)
		m := installMocks(t, env)

		getenv = mapGetenv(map[string]string{
			config.EnvPullSecret:   testPullSecret,
			config.EnvSSHPublicKey: testSSHKey(t),
		})

		err := Cluster(context.Background(), "democtl.yaml", "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(env.ArtifactsDir, "dev"),
			filepath.Join(env.ArtifactsDir, "hub"),
			filepath.Join(env.ArtifactsDir, "prod"),
		}, m.installer.created)
	})

	t.Run("unknown cluster fails before any check", func(t *testing.T) {
		saveAndRestoreFactories(t)
		env := testEnvironment(t)
		installMocks(t, env)

		prereqsCalled := false
		checkInstallerPrereqs = func() *prerequisites.CheckResults {
			prereqsCalled = true
			return &prerequisites.CheckResults{}
		}

		err := Cluster(context.Background(), "democtl.yaml", "staging")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown cluster "staging"`)
		assert.False(t, prereqsCalled, "nothing else runs for an unknown name")
	})

	t.Run("missing credentials", func(t *testing.T) {
		saveAndRestoreFactories(t)
		env := testEnvironment(t)
		installMocks(t, env)

		getenv = mapGetenv(nil)

		err := Cluster(context.Background(), "democtl.yaml", "hub")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvPullSecret)
		assert.Contains(t, err.Error(), config.EnvSSHPublicKey)
	})
}
