package asset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelforge/labelforge-go/project"
)

func TestImportEmptyBatch(t *testing.T) {
	svc, exec, _ := newTestService(project.InputTypeVideo)

	result, err := svc.Import(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Empty(t, exec.calls)
}

func TestImportUnknownInputType(t *testing.T) {
	svc, _, _ := newTestService("LLM_RLHF")

	_, err := svc.Import(context.Background(), "p1", []Asset{
		{Content: "https://hosted.example.com/a"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportValidation))
}

func TestImportRequiresContentOrFrames(t *testing.T) {
	svc, _, _ := newTestService(project.InputTypeVideo)

	_, err := svc.Import(context.Background(), "p1", []Asset{{ExternalID: "empty"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportValidation))
}

func TestImportDuplicateExternalIDsInBatch(t *testing.T) {
	svc, _, _ := newTestService(project.InputTypeVideo)

	_, err := svc.Import(context.Background(), "p1", []Asset{
		{Content: "https://hosted.example.com/a.mp4", ExternalID: "same"},
		{Content: "https://hosted.example.com/b.mp4", ExternalID: "same"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportValidation))
}

func TestImportRejectsExternalIDAlreadyInProject(t *testing.T) {
	exec := &fakeExec{respond: func(query string, vars map[string]interface{}) (interface{}, error) {
		switch {
		case strings.Contains(query, "query projects"):
			return data([]map[string]string{{"id": "p1", "inputType": project.InputTypeVideo}}), nil
		case strings.Contains(query, "query assets"):
			return data([]map[string]string{{"externalId": "video1"}}), nil
		default:
			return data(map[string]string{"id": "p1"}), nil
		}
	}}
	svc := NewService(exec, &fakeStore{})

	_, err := svc.Import(context.Background(), "p1", []Asset{
		{Content: "https://hosted.example.com/a.mp4", ExternalID: "video1"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportValidation))
	assert.Contains(t, err.Error(), "video1")
}

func TestImportAssignsIDsAndStatus(t *testing.T) {
	svc, exec, _ := newTestService(project.InputTypeVideo)

	result, err := svc.Import(context.Background(), "p1", []Asset{
		{Content: "https://hosted.example.com/a.mp4"},
		{Content: "https://hosted.example.com/b.mp4", ID: "caller-chosen"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"unique_1", "caller-chosen"}, result.AssetIDs)

	calls := mutationCalls(exec, "appendManyToDataset")
	require.Len(t, calls, 1)
	body := calls[0].vars["data"].(map[string]interface{})
	assert.Equal(t, []string{"unique_1", "caller-chosen"}, body["idArray"])
	assert.Equal(t, []string{StatusTodo, StatusTodo}, body["statusArray"])
}

func TestImportBatches(t *testing.T) {
	svc, exec, _ := newTestService(project.InputTypeVideo, WithBatchSize(2))

	assets := make([]Asset, 5)
	for i := range assets {
		assets[i] = Asset{Content: "https://hosted.example.com/video.mp4"}
	}

	result, err := svc.Import(context.Background(), "p1", assets)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Imported)
	assert.Len(t, result.AssetIDs, 5)
	assert.Len(t, mutationCalls(exec, "appendManyToDataset"), 3)
}

func TestImportBatchErrorIsWrapped(t *testing.T) {
	exec := &fakeExec{respond: func(query string, vars map[string]interface{}) (interface{}, error) {
		switch {
		case strings.Contains(query, "query projects"):
			return data([]map[string]string{{"id": "p1", "inputType": project.InputTypeVideo}}), nil
		case strings.Contains(query, "query assets"):
			return data([]map[string]string{}), nil
		default:
			return nil, errors.New("boom")
		}
	}}
	svc := NewService(exec, &fakeStore{})

	_, err := svc.Import(context.Background(), "p1", []Asset{
		{Content: "https://hosted.example.com/a.mp4"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchImport))
	assert.Contains(t, err.Error(), "boom")
}
