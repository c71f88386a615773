package receipts

import (
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
)

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "receipts/2b7f0c.json", objectPath("2b7f0c"))
	assert.Equal(t, "receipts/a%2Fb.json", objectPath("a/b"))
}

func TestNewBadUrl(t *testing.T) {
	_, err := New(&Cfg{Url: "://bad"})
	assert.Error(t, err)
}

type gcsTestSuite struct {
	suite.Suite
	client     *storage.Client
	bucketName string
	bucketUrl  string
}

func TestGcsArchive(t *testing.T) {
	t.Skip("requires google cloud storage auth")
	suite.Run(t, new(gcsTestSuite))
}

func (s *gcsTestSuite) SetupSuite() {
	client, err := storage.NewClient(bCtx.Background())
	s.Require().NoError(err)
	s.client = client
	s.bucketName = "dev-storage.x.xyz"
	s.bucketUrl = "https://dev-storage.x.xyz/"
}

func (s *gcsTestSuite) TearDownSuite() {
	ctx := bCtx.Background()
	bucket := s.client.Bucket(s.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: folder + "/test-"})
	for {
		attr, err := it.Next()
		if err == iterator.Done {
			break
		}
		s.NoError(err)
		s.NoError(bucket.Object(attr.Name).Delete(ctx))
	}
	s.NoError(s.client.Close())
}

func (s *gcsTestSuite) TestStore() {
	req := require.New(s.T())
	ctx := bCtx.Background()
	archive, err := New(&Cfg{
		Client:     s.client,
		BucketName: s.bucketName,
		Timeout:    10 * time.Second,
		Url:        s.bucketUrl,
	})
	req.NoError(err)

	receipt := []byte(`{"transaction_hash":"0xabc","errors":null}`)
	u, err := archive.Store(ctx, "test-mint", receipt)
	req.NoError(err)
	req.Equal(s.bucketUrl+"receipts/test-mint.json", u)

	body, err := httpGet(ctx, u)
	req.NoError(err)
	req.Equal(receipt, body)
}

func httpGet(ctx bCtx.Ctx, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("resp.StatusCode != 200")
	}
	return ioutil.ReadAll(resp.Body)
}
