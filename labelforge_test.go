package labelforge_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelforge/labelforge-go"
	"github.com/labelforge/labelforge-go/asset"
	"github.com/labelforge/labelforge-go/config"
	"github.com/labelforge/labelforge-go/platformtest"
	"github.com/labelforge/labelforge-go/project"
)

func newTestClient(t *testing.T, platform *platformtest.Platform) *labelforge.Client {
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
	return client
}

var mp4File = append([]byte{
	0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
	'a', 'v', 'c', '1', 'm', 'p', '4', '1',
}, []byte("mdat....")...)

func TestProjectLifecycle(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	client := newTestClient(t, platform)
	ctx := context.Background()

	p, err := client.Projects.Create(ctx, project.CreateInput{
		Title:         "Traffic cameras",
		InputType:     project.InputTypeVideo,
		JSONInterface: map[string]interface{}{"jobs": map[string]interface{}{}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	stored, ok := platform.Project(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Traffic cameras", stored.Title)
	assert.Equal(t, project.InputTypeVideo, stored.InputType)

	require.NoError(t, client.Projects.Archive(ctx, p.ID))
	stored, _ = platform.Project(p.ID)
	assert.True(t, stored.Archived)

	require.NoError(t, client.Projects.Delete(ctx, p.ID))
	assert.Equal(t, 0, platform.ProjectCount())
}

func TestMissingAPIKeyIsRejected(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()

	cfg := &config.Config{API: config.APIConfig{Endpoint: platform.Endpoint()}}
	_, err := labelforge.New(cfg)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestVideoImportEndToEnd(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	client := newTestClient(t, platform)
	ctx := context.Background()

	p, err := client.Projects.Create(ctx, project.CreateInput{
		Title:     "Dashcams",
		InputType: project.InputTypeVideo,
	})
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "cam-042.mp4")
	require.NoError(t, os.WriteFile(local, mp4File, 0o644))

	result, err := client.Assets.Import(ctx, p.ID, []asset.Asset{
		{Content: "https://hosted.example.com/cam-041.mp4", ExternalID: "cam-041"},
		{Content: local, ExternalID: "cam-042"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	assets := platform.Assets(p.ID)
	require.Len(t, assets, 2)
	byExternal := map[string]platformtest.Asset{}
	for _, a := range assets {
		byExternal[a.ExternalID] = a
	}

	assert.Equal(t, "https://hosted.example.com/cam-041.mp4", byExternal["cam-041"].Content)
	assert.Equal(t, "TODO", byExternal["cam-041"].Status)

	// the local file went through the bucket
	uploaded, ok := platform.Object("projects/" + p.ID + "/assets/" + byExternal["cam-042"].ID)
	require.True(t, ok)
	assert.Equal(t, mp4File, uploaded)

	meta, err := platformtest.UnmarshalMetadata(byExternal["cam-041"])
	require.NoError(t, err)
	params := meta["processingParameters"].(map[string]interface{})
	assert.Equal(t, true, params["shouldUseNativeVideo"])
	assert.Equal(t, float64(30), params["framesPlayedPerSecond"])
}

func TestVideoImportAsyncEndToEnd(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	client := newTestClient(t, platform)
	ctx := context.Background()

	p, err := client.Projects.Create(ctx, project.CreateInput{
		Title:     "Split remotely",
		InputType: project.InputTypeVideo,
	})
	require.NoError(t, err)

	_, err = client.Assets.Import(ctx, p.ID, []asset.Asset{{
		Content:    "https://hosted.example.com/cam-043.mp4",
		ExternalID: "cam-043",
		JSONMetadata: map[string]interface{}{
			"processingParameters": map[string]interface{}{"shouldUseNativeVideo": false},
		},
	}})
	require.ErrorIs(t, err, asset.ErrBatchImportPending)

	assert.Empty(t, platform.Assets(p.ID))
	scheduled := platform.AsyncAssets(p.ID)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "VIDEO", scheduled[0].UploadType)
}

func TestFrameSequenceImportEndToEnd(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	client := newTestClient(t, platform)
	ctx := context.Background()

	p, err := client.Projects.Create(ctx, project.CreateInput{
		Title:     "Pre-extracted frames",
		InputType: project.InputTypeVideo,
	})
	require.NoError(t, err)

	_, err = client.Assets.Import(ctx, p.ID, []asset.Asset{{
		ExternalID: "sequence-1",
		JSONContent: []string{
			"https://frames.example.com/1.jpg",
			"https://frames.example.com/2.jpg",
		},
	}})
	require.NoError(t, err)

	assets := platform.Assets(p.ID)
	require.Len(t, assets, 1)
	require.NotEmpty(t, assets[0].JSONContent)

	doc, ok := platform.Object("projects/" + p.ID + "/assets/" + assets[0].ID + "/frames.json")
	require.True(t, ok)

	var frameMap map[string]string
	require.NoError(t, json.Unmarshal(doc, &frameMap))
	assert.Equal(t, "https://frames.example.com/1.jpg", frameMap["0"])
	assert.Equal(t, "https://frames.example.com/2.jpg", frameMap["1"])
}

func TestDuplicatedExternalIDRejectedByPlatformState(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	client := newTestClient(t, platform)
	ctx := context.Background()

	p, err := client.Projects.Create(ctx, project.CreateInput{
		Title:     "Dedup",
		InputType: project.InputTypeVideo,
	})
	require.NoError(t, err)

	_, err = client.Assets.Import(ctx, p.ID, []asset.Asset{
		{Content: "https://hosted.example.com/a.mp4", ExternalID: "a"},
	})
	require.NoError(t, err)

	_, err = client.Assets.Import(ctx, p.ID, []asset.Asset{
		{Content: "https://hosted.example.com/a-again.mp4", ExternalID: "a"},
	})
	require.ErrorIs(t, err, asset.ErrImportValidation)
}

func TestCreateWaitsForProjectReadability(t *testing.T) {
	platform := platformtest.New()
	defer platform.Close()
	platform.CreateLag = 2

	client := newTestClient(t, platform)

	p, err := client.Projects.Create(context.Background(), project.CreateInput{
		Title:     "Slow to materialize",
		InputType: project.InputTypeImage,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
}
