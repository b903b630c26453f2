package firebase

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const staticMapPrefix = "static-maps"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// isPrivateIP checks whether an IP address is a private/reserved address.
func isPrivateIP(ip net.IP) bool {
	privateRanges := []*net.IPNet{
		parseCIDR("10.0.0.0/8"),
		parseCIDR("172.16.0.0/12"),
		parseCIDR("192.168.0.0/16"),
		parseCIDR("127.0.0.0/8"),
		parseCIDR("169.254.0.0/16"),
		parseCIDR("0.0.0.0/8"),
		parseCIDR("::1/128"),
		parseCIDR("fc00::/7"),
		parseCIDR("fe80::/10"),
	}

	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}

// validateExternalURL validates that a URL is safe to fetch (prevents SSRF).
func validateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %v", host, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}

	return nil
}

// NewApp initialises Firebase. credentials is either inline JSON or a
// path to a service account file; empty means default credentials.
func NewApp(ctx context.Context, credentials string, log logrus.FieldLogger) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case strings.HasPrefix(credentials, "{"):
		log.Info("Using Firebase credentials from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	case credentials != "":
		log.WithField("path", credentials).Info("Using Firebase credentials from file")
		opts = append(opts, option.WithCredentialsFile(credentials))
	default:
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	log.Info("Firebase initialized successfully")
	return app, nil
}

// Storage uploads static map images to a Firebase Storage bucket.
type Storage struct {
	app        *firebase.App
	bucketName string
	httpClient *http.Client
	validate   func(rawURL string) error
	log        logrus.FieldLogger
}

func NewStorage(app *firebase.App, bucketName string, log logrus.FieldLogger) (*Storage, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}
	return &Storage{
		app:        app,
		bucketName: bucketName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		validate:   validateExternalURL,
		log:        log,
	}, nil
}

func (s *Storage) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	client, err := s.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage client: %v", err)
	}
	bucket, err := client.Bucket(s.bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %v", err)
	}
	return bucket, nil
}

// fetchImage downloads imageURL and checks it is an image.
func (s *Storage) fetchImage(ctx context.Context, imageURL string) (io.ReadCloser, string, error) {
	if err := s.validate(imageURL); err != nil {
		return nil, "", fmt.Errorf("URL validation failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		resp.Body.Close()
		return nil, "", fmt.Errorf("non-image content-type %q (expected image/*)", contentType)
	}

	return resp.Body, contentType, nil
}

// UploadStaticMap downloads the rendered map at imageURL and stores it as
// static-maps/<name>.png, returning the stored object.
func (s *Storage) UploadStaticMap(ctx context.Context, imageURL, name string) (StoredObject, error) {
	body, contentType, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return StoredObject{}, err
	}
	defer body.Close()

	bucket, err := s.bucket(ctx)
	if err != nil {
		return StoredObject{}, err
	}

	objectPath := StaticMapPath(name)
	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, body); err != nil {
		wc.Close()
		return StoredObject{}, fmt.Errorf("failed to upload image to Firebase: %v", err)
	}
	if err := wc.Close(); err != nil {
		return StoredObject{}, fmt.Errorf("failed to finalize upload: %v", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		s.log.WithError(err).WithField("object", objectPath).Warn("Failed to set public ACL")
	}

	return StoredObject{Path: objectPath, URL: PublicURL(s.bucketName, objectPath)}, nil
}

// DeleteFile deletes an object from the bucket.
func (s *Storage) DeleteFile(ctx context.Context, objectPath string) error {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}

	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}

	s.log.WithField("object", objectPath).Info("Deleted file from bucket")
	return nil
}

func StaticMapPath(name string) string {
	return fmt.Sprintf("%s/%s.png", staticMapPrefix, sanitizeFilename(name))
}

func PublicURL(bucketName, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath)
}
