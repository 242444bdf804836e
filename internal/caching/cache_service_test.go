package caching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CacheServiceTestSuite struct {
	suite.Suite
	server  *miniredis.Miniredis
	cache   CacheService
	context context.Context
}

func (suite *CacheServiceTestSuite) SetupTest() {
	server, err := miniredis.Run()
	assert.NoError(suite.T(), err)
	suite.server = server

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	suite.cache = NewRedisCacheServiceWithClient(client)
	suite.context = context.Background()
}

func (suite *CacheServiceTestSuite) TearDownTest() {
	suite.server.Close()
}

func TestCacheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CacheServiceTestSuite))
}

func (suite *CacheServiceTestSuite) TestSetAndGetString() {
	err := suite.cache.SetString(suite.context, "greeting", "hola", time.Minute)
	assert.NoError(suite.T(), err)

	value, err := suite.cache.GetString(suite.context, "greeting")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hola", value)
}

func (suite *CacheServiceTestSuite) TestGetString_Missing() {
	_, err := suite.cache.GetString(suite.context, "absent")
	assert.ErrorIs(suite.T(), err, redis.Nil)
}

func (suite *CacheServiceTestSuite) TestDelete() {
	assert.NoError(suite.T(), suite.cache.SetString(suite.context, "k", "v", time.Minute))
	assert.NoError(suite.T(), suite.cache.Delete(suite.context, "k"))

	_, err := suite.cache.GetString(suite.context, "k")
	assert.ErrorIs(suite.T(), err, redis.Nil)
}

func (suite *CacheServiceTestSuite) TestRateLimit_BelowLimit() {
	limited, err := suite.cache.IsRateLimited(suite.context, "1.2.3.4", 3, time.Minute)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), limited)

	assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))
	assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))

	limited, err = suite.cache.IsRateLimited(suite.context, "1.2.3.4", 3, time.Minute)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), limited)
}

func (suite *CacheServiceTestSuite) TestRateLimit_AtLimit() {
	for i := 0; i < 3; i++ {
		assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))
	}

	limited, err := suite.cache.IsRateLimited(suite.context, "1.2.3.4", 3, time.Minute)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), limited)
}

func (suite *CacheServiceTestSuite) TestRateLimit_WindowExpires() {
	assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))
	assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))

	suite.server.FastForward(2 * time.Minute)

	limited, err := suite.cache.IsRateLimited(suite.context, "1.2.3.4", 2, time.Minute)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), limited)
}

func (suite *CacheServiceTestSuite) TestRateLimit_KeysAreIndependent() {
	for i := 0; i < 5; i++ {
		assert.NoError(suite.T(), suite.cache.IncrementRateLimit(suite.context, "1.2.3.4", time.Minute))
	}

	limited, err := suite.cache.IsRateLimited(suite.context, "5.6.7.8", 3, time.Minute)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), limited)
}
