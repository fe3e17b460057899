package cloudstorage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	query   string
	vars    map[string]interface{}
	payload interface{}
}

func (f *fakeExec) Execute(_ context.Context, query string, vars map[string]interface{}, result interface{}) error {
	f.query, f.vars = query, vars
	if result == nil || f.payload == nil {
		return nil
	}
	b, err := json.Marshal(f.payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

func TestConnections(t *testing.T) {
	exec := &fakeExec{payload: map[string]interface{}{
		"data": []map[string]interface{}{{
			"id":              "conn_1",
			"numberOfAssets":  12,
			"selectedFolders": []string{"raw/", "processed/"},
			"projectId":       "p1",
		}},
	}}

	connections, err := Connections(context.Background(), exec, Where{ProjectID: "p1"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "conn_1", connections[0].ID)
	assert.Equal(t, 12, connections[0].NumberOfAssets)
	assert.Equal(t, []string{"raw/", "processed/"}, connections[0].SelectedFolders)

	assert.Contains(t, exec.query, "dataConnections")
	where := exec.vars["where"].(map[string]interface{})
	assert.Equal(t, "p1", where["projectId"])
	assert.Equal(t, 100, exec.vars["first"])
}
