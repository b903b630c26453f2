package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"
	"time"

	"livebait-directory/models"
	"livebait-directory/testhelpers"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memCache is an in-process cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
}

// directoryFixture is a small directory: two Maine cities and one
// Massachusetts city.
type directoryFixture struct {
	db       *gorm.DB
	maine    *models.Region
	mass     *models.Region
	portland *models.City
	bangor   *models.City
	boston   *models.City
	bobs     *models.Listing
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	f := testhelpers.NewFixture(t, db)

	d := &directoryFixture{db: db}
	d.maine = f.Region("Maine", "ME", "maine")
	d.mass = f.Region("Massachusetts", "MA", "massachusetts")
	f.Region("Vermont", "VT", "vermont")

	d.portland = f.City(d.maine, "Portland", "portland")
	d.bangor = f.City(d.maine, "Bangor", "bangor")
	d.boston = f.City(d.mass, "Boston", "boston")

	d.bobs = f.Listing(d.portland, "Bob's Bait", "bobs-bait", 43.6591, -70.2568)
	f.Listing(d.portland, "Anchor Tackle", "anchor-tackle", 43.6615, -70.2553)
	f.Listing(d.bangor, "Penobscot Bait", "penobscot-bait", 44.8012, -68.7778)
	f.Listing(d.boston, "Harbor Bait", "harbor-bait", 42.3601, -71.0589)
	return d
}

func newDirectoryHandler(db *gorm.DB, c *memCache) *DirectoryHandler {
	log, _ := testhelpers.NewTestLogger()
	return &DirectoryHandler{DB: db, Cache: c, SiteURL: "https://site.test", Log: log}
}

func testIssuer(t *testing.T) *utils.TokenIssuer {
	t.Helper()
	issuer, err := utils.NewTokenIssuer(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return issuer
}

// ==================== Request Helpers ====================

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// uploadRequest creates a multipart request with one file part named "file".
func uploadRequest(url, filename string, content []byte, token string) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", "text/csv")
	part, err := writer.CreatePart(h)
	if err != nil {
		panic("failed to create multipart file part: " + err.Error())
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ==================== Response Helpers ====================

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
