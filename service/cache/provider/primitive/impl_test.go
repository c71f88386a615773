package primitive

import (
	"testing"
	"time"

	"github.com/coocood/freecache"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/service/cache/provider"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im *impl
}

func (ts *testsuite) SetupTest() {
	ts.im = NewPrimitive("test", 1).(*impl)
}

func (ts *testsuite) TearDownTest() {
	ts.im.cache.Clear()
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestSet() {
	k := "projects:all"
	v := []byte(`[{"id":"p-1"}]`)

	ts.NoError(ts.im.Set(mockCtx, k, v, time.Second))
	r, e := ts.im.cache.Get([]byte(k))
	ts.NoError(e)
	ts.Equal(v, r)

	time.Sleep(1100 * time.Millisecond)
	_, e = ts.im.cache.Get([]byte(k))
	ts.Equal(freecache.ErrNotFound, e)
}

func (ts *testsuite) TestGet() {
	cases := []struct {
		Desc   string
		Key    string
		Val    string
		Expire int
		Err    error
	}{
		{
			Desc:   "Success with expiration",
			Key:    "ens:vitalik.eth",
			Val:    "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
			Expire: 30,
		},
		{
			Desc: "Success without expiration",
			Key:  "key",
			Val:  "value",
		},
		{
			Desc: "Not found",
			Err:  provider.ErrNotFound,
		},
	}

	for _, c := range cases {
		if len(c.Key) > 0 {
			ts.NoError(ts.im.cache.Set([]byte(c.Key), []byte(c.Val), c.Expire), c.Desc)
		}

		v, ttl, e := ts.im.Get(mockCtx, c.Key)
		ts.Equal(c.Val, string(v), c.Desc)
		ts.Equal(c.Err, e, c.Desc)
		if c.Expire > 0 {
			ts.True(ttl > 28*time.Second && ttl <= 30*time.Second, c.Desc)
		} else {
			ts.Equal(time.Duration(0), ttl, c.Desc)
		}
	}
}

func (ts *testsuite) TestDel() {
	ts.NoError(ts.im.Set(mockCtx, "key", []byte("value"), time.Minute))
	ts.NoError(ts.im.Del(mockCtx, "key"))
	_, _, e := ts.im.Get(mockCtx, "key")
	ts.Equal(provider.ErrNotFound, e)
}
