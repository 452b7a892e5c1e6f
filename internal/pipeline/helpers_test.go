package pipeline

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// memSink records writes in memory.
type memSink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemSink() *memSink {
	return &memSink{files: make(map[string][]byte)}
}

func (s *memSink) Write(path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
	return nil
}

// projectFS returns a project tree with the release fragments and the
// handcraft metadata; extra files are layered on top.
func projectFS(extra map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{
		DefaultMetadataFile: {Data: []byte(handcraft)},
		DefaultReleaseTemplateDir + "/" + FragmentAWSExternalConfig:        {Data: []byte(awsExtraConfig)},
		DefaultReleaseTemplateDir + "/" + FragmentAWSExternalConfigUpgrade: {Data: []byte(awsExtraConfigUpgrade)},
		DefaultReleaseTemplateDir + "/" + FragmentVCloudDeleteInstallation: {Data: []byte(vcloudExtraConfig)},
	}
	for name, data := range extra {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func newTestComponents(t *testing.T, fsys fstest.MapFS, sink Sink) Components {
	t.Helper()
	c, err := NewComponents(fsys, DefaultLayout(), sink)
	require.NoError(t, err)
	return c
}

func decodeInto(text string, v any) error {
	return yaml.Unmarshal([]byte(text), v)
}
