package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 answers path-style GetObject and PutObject requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if dec, ok := decodeSingleChunk(body); ok {
			body = dec
		}
		f.objects[key] = body
		return response(http.StatusOK, nil), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			resp := response(http.StatusNotFound, []byte(
				`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
			resp.Header.Set("Content-Type", "application/xml")
			return resp, nil
		}
		return response(http.StatusOK, body), nil
	}
	return response(http.StatusNotImplemented, nil), nil
}

func response(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        http.Header{"Content-Length": {strconv.Itoa(len(body))}},
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(bytes.NewReader(body)),
	}
}

// decodeSingleChunk unwraps a one-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func decodeSingleChunk(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newFakeS3Store(t *testing.T, prefix string) (*S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return newS3WithClient(client, "visits-bucket", prefix), fake
}

func TestS3GetMissing(t *testing.T) {
	s, _ := newFakeS3Store(t, "")

	_, err := s.Get(context.Background(), "clientVisits")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestS3PutAndGet(t *testing.T) {
	ctx := context.Background()
	s, fake := newFakeS3Store(t, "team-a/")

	if err := s.Put(ctx, "clientVisits", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := fake.objects["team-a/clientVisits"]; !ok {
		t.Errorf("expected object under prefixed key, have %d objects", len(fake.objects))
	}

	got, err := s.Get(ctx, "clientVisits")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("connection reset") }

func TestCloseObjectLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	closeObject(failingCloser{}, "clientVisits")

	out := buf.String()
	for _, want := range []string{"level=WARN", "closing object body", "key=clientVisits", "connection reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
