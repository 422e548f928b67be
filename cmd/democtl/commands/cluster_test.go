package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster(t *testing.T) {
	cmd := Cluster()

	require.NotNil(t, cmd)
	assert.Equal(t, "cluster", cmd.Use)
	assert.Equal(t, "Install OpenShift clusters with openshift-install", cmd.Short)
	assert.Contains(t, cmd.Long, "install-config.yaml")
	assert.Contains(t, cmd.Long, "openshift-install create cluster")
}

func TestCluster_NameFlag(t *testing.T) {
	cmd := Cluster()

	flag := cmd.Flags().Lookup("name")
	require.NotNil(t, flag, "name flag should exist")
	assert.Empty(t, flag.DefValue, "default installs all configured clusters")
}

func TestCluster_ConfigFlag(t *testing.T) {
	cmd := Cluster()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
}

func TestCluster_RunE(t *testing.T) {
	cmd := Cluster()
	assert.NotNil(t, cmd.RunE, "Cluster command should have RunE function")
}
