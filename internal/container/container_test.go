package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clubhub/config"
	"github.com/oksasatya/clubhub/internal/application"
	"github.com/oksasatya/clubhub/pkg/helpers"
)

func memoryConfig() *config.Config {
	return &config.Config{
		AppName:          "clubhub",
		Env:              "development",
		StoreDriver:      config.StoreMemory,
		JWTSecret:        "container-secret",
		JWTTTL:           time.Hour,
		BcryptCost:       4,
		MetricsEnabled:   true,
		RateLimitEnabled: false,
	}
}

func TestBuild_MemoryStore(t *testing.T) {
	c, err := Build(context.Background(), memoryConfig(), helpers.NewDiscardLogger(), AllOptions())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Users)
	assert.NotNil(t, c.Metrics)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Indexer)
	assert.Nil(t, c.Rabbit)
	assert.Equal(t, time.Hour, c.Tokens.TTL())
	assert.Equal(t, 4, c.Hasher.Cost())

	svc := c.AuthService()
	assert.Nil(t, svc.Notifier)
	assert.Nil(t, svc.Indexer)

	res, err := svc.Register(context.Background(), application.RegisterInput{Username: "alice", Email: "a@x.com", Password: "Secr3t!"})
	require.NoError(t, err)
	id, err := c.Tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.SubjectID)

	_, err = c.DirectoryService().SearchMembers(context.Background(), "alice", 10)
	assert.ErrorIs(t, err, application.ErrDirectoryUnavailable)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = "sqlite"
	_, err := Build(context.Background(), cfg, helpers.NewDiscardLogger(), Options{})
	assert.Error(t, err)
}
