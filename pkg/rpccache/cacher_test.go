package rpccache

import (
	"time"

	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CacherSuite struct {
	suite.Suite
	cacher Cacher
}

func (c *CacherSuite) SetupSuite() {
	require.NoError(c.T(), c.cacher.Start())
}

func (c *CacherSuite) TearDownSuite() {
	require.NoError(c.T(), c.cacher.Stop())
}

func (c *CacherSuite) TestGetSetDel() {
	key := randStr()
	val := []byte(randStr())
	err := c.cacher.Set(key, val)
	require.NoError(c.T(), err)

	tVal, err := c.cacher.Get(key)
	require.NoError(c.T(), err)
	require.Equal(c.T(), val, tVal)

	nilVal, err := c.cacher.Get(randStr())
	require.NoError(c.T(), err)
	require.Nil(c.T(), nilVal)

	err = c.cacher.Del(key)
	require.NoError(c.T(), err)
	nilVal, err = c.cacher.Get(key)
	require.NoError(c.T(), err)
	require.Nil(c.T(), nilVal)
}

func (c *CacherSuite) TestSetEx() {
	key := randStr()
	val := []byte(randStr())
	err := c.cacher.SetEx(key, val, 10*time.Millisecond)
	require.NoError(c.T(), err)

	tVal, err := c.cacher.Get(key)
	require.NoError(c.T(), err)
	require.Equal(c.T(), val, tVal)

	time.Sleep(20 * time.Millisecond)
	nilVal, err := c.cacher.Get(key)
	require.NoError(c.T(), err)
	require.Nil(c.T(), nilVal)
}

func (c *CacherSuite) TestHas() {
	key := randStr()
	val := []byte(randStr())
	err := c.cacher.Set(key, val)
	require.NoError(c.T(), err)

	has, err := c.cacher.Has(key)
	require.NoError(c.T(), err)
	require.True(c.T(), has)

	err = c.cacher.Del(key)
	require.NoError(c.T(), err)
	has, err = c.cacher.Has(key)
	require.NoError(c.T(), err)
	require.False(c.T(), has)
}

func randStr() string {
	return uuid.NewV4().String()
}
