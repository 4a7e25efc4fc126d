package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/lrucache"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "lrucache.yaml", `
redis: redis://cache:6379/2
namespace: users
ping_interval: 250
max: 5000
ttl: 60
monitor: true
redlock:
  tries: 4
  retry_delay: 20
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "redis://cache:6379/2", c.Redis)
	assert.Equal(t, "users", c.Namespace)
	assert.Equal(t, 250*time.Millisecond, c.PingInterval)
	assert.Equal(t, int64(5000), c.Max)
	assert.Equal(t, time.Minute, c.TTL)
	assert.True(t, c.Monitor)
	assert.Equal(t, 4, c.Redlock.Tries)
	assert.Equal(t, 20*time.Millisecond, c.Redlock.RetryDelay)
	assert.Empty(t, c.ClusterNodes)
}

func TestPingIntervalDisabled(t *testing.T) {
	for _, raw := range []string{"soon", "0", "-5"} {
		p := writeFile(t, "c.yaml", "ping_interval: "+raw+"\n")
		c, err := Load(p)
		require.NoError(t, err)
		assert.Zero(t, c.PingInterval, "ping_interval %q", raw)
	}
}

func TestTTLDurationString(t *testing.T) {
	p := writeFile(t, "c.yaml", "ttl: 5m\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, c.TTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LRUCACHE_PREFIX", "MOL-uat-")
	t.Setenv("LRUCACHE_CLUSTER_NODES", "10.0.0.1:7000, 10.0.0.2:7001")
	t.Setenv("LRUCACHE_REDLOCK_DISABLED", "true")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "MOL-uat-", c.Prefix)
	assert.Equal(t, []string{"10.0.0.1:7000", "10.0.0.2:7001"}, c.ClusterNodes)
	assert.True(t, c.Redlock.Disabled)

	o, err := Options[string](c)
	require.NoError(t, err)
	require.NotNil(t, o.Cluster)
	assert.Equal(t, []lrucache.ClusterNode{{Host: "10.0.0.1", Port: 7000}, {Host: "10.0.0.2", Port: 7001}}, o.Cluster.Nodes)
	assert.True(t, o.Redlock.Disabled)
}

func TestEnvFile(t *testing.T) {
	env := writeFile(t, ".env", "LRUCACHE_NAMESPACE=from-dotenv\n")
	t.Setenv("LRUCACHE_NAMESPACE", "")
	require.NoError(t, os.Unsetenv("LRUCACHE_NAMESPACE"))

	c, err := Load("", env, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.Namespace)
}

func TestBadClusterNode(t *testing.T) {
	_, err := Options[string](&Config{ClusterNodes: []string{"no-port"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, lrucache.ErrConfig))
}

func TestFromURL(t *testing.T) {
	o, err := Options[[]byte](FromURL("redis://localhost:6380"))
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6380", o.Redis)
	assert.Nil(t, o.Cluster)
}
