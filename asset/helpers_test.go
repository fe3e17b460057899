package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/labelforge/labelforge-go/bucket"
)

type call struct {
	query string
	vars  map[string]interface{}
}

type fakeExec struct {
	calls   []call
	respond func(query string, vars map[string]interface{}) (interface{}, error)
}

func (f *fakeExec) Execute(_ context.Context, query string, vars map[string]interface{}, result interface{}) error {
	f.calls = append(f.calls, call{query: query, vars: vars})
	if f.respond == nil {
		return nil
	}
	payload, err := f.respond(query, vars)
	if err != nil {
		return err
	}
	if result == nil || payload == nil {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

func data(v interface{}) map[string]interface{} {
	return map[string]interface{}{"data": v}
}

// respondPlatform answers the project lookup and the external id check; every
// mutation succeeds.
func respondPlatform(inputType string) func(string, map[string]interface{}) (interface{}, error) {
	return func(query string, vars map[string]interface{}) (interface{}, error) {
		switch {
		case strings.Contains(query, "query projects"):
			return data([]map[string]string{{"id": "p1", "inputType": inputType}}), nil
		case strings.Contains(query, "query assets"):
			return data([]map[string]string{}), nil
		default:
			return data(map[string]string{"id": "p1"}), nil
		}
	}
}

type fakeStore struct {
	requested [][]string
	uploads   [][]bucket.Upload
	ids       int
}

func (s *fakeStore) RequestSignedURLs(_ context.Context, paths []string) ([]string, error) {
	s.requested = append(s.requested, paths)
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = "https://bucket.test/" + p + "?signature=sig"
	}
	return urls, nil
}

func (s *fakeStore) UploadAll(_ context.Context, ups []bucket.Upload) error {
	s.uploads = append(s.uploads, ups)
	return nil
}

func (s *fakeStore) UniqueID() string {
	s.ids++
	return fmt.Sprintf("unique_%d", s.ids)
}

func (s *fakeStore) allUploads() []bucket.Upload {
	var out []bucket.Upload
	for _, batch := range s.uploads {
		out = append(out, batch...)
	}
	return out
}

func newTestService(inputType string, opts ...Option) (*Service, *fakeExec, *fakeStore) {
	exec := &fakeExec{respond: respondPlatform(inputType)}
	store := &fakeStore{}
	return NewService(exec, store, opts...), exec, store
}

func mutationCalls(exec *fakeExec, name string) []call {
	var out []call
	for _, c := range exec.calls {
		if strings.Contains(c.query, name) {
			out = append(out, c)
		}
	}
	return out
}

// procParams decodes the processingParameters of a serialized metadata
// document.
func procParams(t *testing.T, metaJSON string) processingParameters {
	t.Helper()
	var meta struct {
		Params processingParameters `json:"processingParameters"`
	}
	require.NoError(t, json.Unmarshal([]byte(metaJSON), &meta))
	return meta.Params
}

// Minimal valid magic bytes so mime sniffing sees real media files.
var (
	mp4Header = []byte{
		0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
		0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
		'a', 'v', 'c', '1', 'm', 'p', '4', '1',
	}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func writeMP4(t *testing.T, name string) string {
	return writeFile(t, name, append(append([]byte{}, mp4Header...), []byte("mdat....")...))
}

func writeJPEG(t *testing.T, name string) string {
	return writeFile(t, name, append(append([]byte{}, jpegHeader...), []byte("scan data")...))
}
