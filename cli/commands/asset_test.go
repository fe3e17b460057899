package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go"
	"github.com/labelforge/labelforge-go/config"
	"github.com/labelforge/labelforge-go/journal"
	"github.com/labelforge/labelforge-go/platformtest"
	"github.com/labelforge/labelforge-go/project"
)

var mp4File = append([]byte{
	0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
	'a', 'v', 'c', '1', 'm', 'p', '4', '1',
}, []byte("mdat....")...)

func newTestApp() *cli.App {
	return &cli.App{
		Name:     "labelforge",
		Flags:    GlobalFlags(),
		Commands: []*cli.Command{Project(), Member(), Asset(), Storage()},
	}
}

func createVideoProject(t *testing.T, platform *platformtest.Platform) string {
	t.Helper()
	cfg := &config.Config{
		API: config.APIConfig{
			Endpoint:  platform.Endpoint(),
			Key:       "sk-test",
			Timeout:   5 * time.Second,
			VerifySSL: true,
		},
		Upload: config.UploadConfig{Concurrency: 2, BatchSize: 100},
	}
	client, err := labelforge.New(cfg)
	require.NoError(t, err)

	p, err := client.Projects.Create(context.Background(), project.CreateInput{
		Title:     "Dashcams",
		InputType: project.InputTypeVideo,
	})
	require.NoError(t, err)
	return p.ID
}

// Importing the same local file twice must record it in the journal on the
// first run and skip it on the second.
func TestAssetImportRecordsJournalAndSkipsRepeats(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	projectID := createVideoProject(t, platform)

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "cam-042.mp4")
	require.NoError(t, os.WriteFile(videoPath, mp4File, 0o644))
	journalPath := filepath.Join(dir, "journal.db")

	runImport := func(extra ...string) error {
		args := []string{
			"labelforge", "--endpoint", platform.Endpoint(), "--api-key", "sk-test",
			"asset", "import", "--journal", journalPath, "--no-progress",
		}
		args = append(args, extra...)
		return newTestApp().Run(args)
	}

	require.NoError(t, runImport("--external-id", "cam-042", projectID, videoPath))
	require.Len(t, platform.Assets(projectID), 1)

	jrn, err := journal.Open(journalPath)
	require.NoError(t, err)
	entries, err := jrn.List(projectID)
	require.NoError(t, jrn.Close())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cam-042", entries[0].ExternalID)
	assert.Equal(t, videoPath, entries[0].Path)
	assert.Equal(t, int64(len(mp4File)), entries[0].Size)
	assert.NotEmpty(t, entries[0].AssetID)

	// second run: the journal has seen the file, nothing reaches the platform
	require.NoError(t, runImport("--external-id", "cam-042", projectID, videoPath))
	assert.Len(t, platform.Assets(projectID), 1)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://hosted.example.com/a.mp4"))
	assert.True(t, isRemote("http://a"))
	assert.False(t, isRemote("./videos/a.mp4"))
	assert.False(t, isRemote("httpfile.mp4"))
}
