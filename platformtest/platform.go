// Package platformtest runs an in-process stand-in for the hosted platform:
// the GraphQL endpoint plus a bucket accepting signed-URL PUTs. Tests point
// a real client at it and assert on the recorded state.
package platformtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

type Project struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	InputType     string `json:"inputType"`
	JSONInterface string `json:"jsonInterface"`
	Archived      bool   `json:"archived"`
}

type Asset struct {
	ID           string `json:"id"`
	ExternalID   string `json:"externalId"`
	Content      string `json:"content"`
	JSONContent  string `json:"jsonContent"`
	JSONMetadata string `json:"jsonMetadata"`
	Status       string `json:"status"`
	IsHoneypot   bool   `json:"isHoneypot"`
	UploadType   string `json:"-"`
}

type Platform struct {
	srv *httptest.Server

	mu       sync.Mutex
	projects map[string]*Project
	assets   map[string][]Asset
	async    map[string][]Asset
	objects  map[string][]byte
	nextID   int

	// CreateLag makes freshly created projects unreadable for that many
	// polls, to exercise the client's post-create wait loop.
	CreateLag int
	lagLeft   map[string]int
}

func New() *Platform {
	gin.SetMode(gin.TestMode)

	p := &Platform{
		projects: map[string]*Project{},
		assets:   map[string][]Asset{},
		async:    map[string][]Asset{},
		objects:  map[string][]byte{},
		lagLeft:  map[string]int{},
	}

	r := gin.New()
	r.POST("/api/v2/graphql", p.handleGraphQL)
	r.PUT("/bucket/*path", p.handlePut)
	p.srv = httptest.NewServer(r)
	return p
}

func (p *Platform) Close() { p.srv.Close() }

// Endpoint is the GraphQL URL to configure the client with.
func (p *Platform) Endpoint() string { return p.srv.URL + "/api/v2/graphql" }

func (p *Platform) Project(id string) (Project, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	proj, ok := p.projects[id]
	if !ok {
		return Project{}, false
	}
	return *proj, true
}

func (p *Platform) ProjectCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.projects)
}

// Assets returns the synchronously imported assets of a project.
func (p *Platform) Assets(projectID string) []Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Asset(nil), p.assets[projectID]...)
}

// AsyncAssets returns the assets scheduled for server-side processing.
func (p *Platform) AsyncAssets(projectID string) []Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Asset(nil), p.async[projectID]...)
}

// Object returns a bucket object uploaded through a signed URL.
func (p *Platform) Object(path string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.objects[path]
	return data, ok
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (p *Platform) handlePut(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	p.objects[strings.TrimPrefix(c.Param("path"), "/")] = data
	p.mu.Unlock()
	c.Status(http.StatusOK)
}

func (p *Platform) handleGraphQL(c *gin.Context) {
	if !strings.HasPrefix(c.GetHeader("Authorization"), "X-API-Key: ") {
		c.JSON(http.StatusOK, gin.H{"errors": []gin.H{{
			"message":    "no api key provided",
			"extensions": gin.H{"code": "UNAUTHENTICATED"},
		}}})
		return
	}

	var req gqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case strings.Contains(req.Query, "createUploadBucketSignedUrls"):
		p.signedURLs(c, req)
	case strings.Contains(req.Query, "createProject"):
		p.createProject(c, req)
	case strings.Contains(req.Query, "deleteProjectAsynchronously"):
		p.deleteProject(c, req)
	case strings.Contains(req.Query, "updatePropertiesInProject"):
		p.updateProject(c, req)
	case strings.Contains(req.Query, "countProjects"):
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": len(p.projects)}})
	case strings.Contains(req.Query, "appendManyFramesToDataset"):
		p.appendAssets(c, req, true)
	case strings.Contains(req.Query, "appendManyToDataset"):
		p.appendAssets(c, req, false)
	case strings.Contains(req.Query, "query assets"):
		p.queryAssets(c, req)
	case strings.Contains(req.Query, "query projects"):
		p.queryProjects(c, req)
	default:
		c.JSON(http.StatusOK, gin.H{"errors": []gin.H{{
			"message": "unsupported operation in test platform",
		}}})
	}
}

func (p *Platform) createProject(c *gin.Context, req gqlRequest) {
	data, _ := req.Variables["data"].(map[string]interface{})
	p.nextID++
	id := fmt.Sprintf("proj_%d", p.nextID)
	proj := &Project{ID: id}
	if v, ok := data["title"].(string); ok {
		proj.Title = v
	}
	if v, ok := data["description"].(string); ok {
		proj.Description = v
	}
	if v, ok := data["inputType"].(string); ok {
		proj.InputType = v
	}
	if v, ok := data["jsonInterface"].(string); ok {
		proj.JSONInterface = v
	}
	p.projects[id] = proj
	if p.CreateLag > 0 {
		p.lagLeft[id] = p.CreateLag
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": gin.H{"id": id}}})
}

func (p *Platform) deleteProject(c *gin.Context, req gqlRequest) {
	id := whereID(req.Variables)
	delete(p.projects, id)
	delete(p.assets, id)
	delete(p.async, id)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": gin.H{"id": id}}})
}

func (p *Platform) updateProject(c *gin.Context, req gqlRequest) {
	id, _ := req.Variables["projectID"].(string)
	proj, ok := p.projects[id]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"errors": []gin.H{{"message": "project not found"}}})
		return
	}
	if v, ok := req.Variables["archived"].(bool); ok {
		proj.Archived = v
	}
	if v, ok := req.Variables["title"].(string); ok {
		proj.Title = v
	}
	if v, ok := req.Variables["description"].(string); ok {
		proj.Description = v
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": gin.H{"id": id}}})
}

func (p *Platform) queryProjects(c *gin.Context, req gqlRequest) {
	where, _ := req.Variables["where"].(map[string]interface{})
	id, _ := where["id"].(string)

	var out []*Project
	if id != "" {
		if left := p.lagLeft[id]; left > 0 {
			p.lagLeft[id] = left - 1
		} else if proj, ok := p.projects[id]; ok {
			out = append(out, proj)
		}
	} else {
		for _, proj := range p.projects {
			out = append(out, proj)
		}
	}
	if out == nil {
		out = []*Project{}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": out}})
}

func (p *Platform) queryAssets(c *gin.Context, req gqlRequest) {
	where, _ := req.Variables["where"].(map[string]interface{})
	proj, _ := where["project"].(map[string]interface{})
	projectID, _ := proj["id"].(string)

	wanted := map[string]bool{}
	if in, ok := where["externalIdStrictlyIn"].([]interface{}); ok {
		for _, v := range in {
			if s, ok := v.(string); ok {
				wanted[s] = true
			}
		}
	}

	out := []Asset{}
	for _, a := range p.assets[projectID] {
		if len(wanted) == 0 || wanted[a.ExternalID] {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": out}})
}

func (p *Platform) appendAssets(c *gin.Context, req gqlRequest, async bool) {
	projectID := whereID(req.Variables)
	data, _ := req.Variables["data"].(map[string]interface{})

	content := stringArray(data["contentArray"])
	externalIDs := stringArray(data["externalIDArray"])
	ids := stringArray(data["idArray"])
	jsonContents := stringArray(data["jsonContentArray"])
	metas := stringArray(data["jsonMetadataArray"])
	statuses := stringArray(data["statusArray"])
	honeypots := boolArray(data["isHoneypotArray"])
	uploadType, _ := data["uploadType"].(string)

	for i := range ids {
		a := Asset{ID: ids[i], UploadType: uploadType}
		if i < len(content) {
			a.Content = content[i]
		}
		if i < len(externalIDs) {
			a.ExternalID = externalIDs[i]
		}
		if i < len(jsonContents) {
			a.JSONContent = jsonContents[i]
		}
		if i < len(metas) {
			a.JSONMetadata = metas[i]
		}
		if i < len(statuses) {
			a.Status = statuses[i]
		}
		if i < len(honeypots) {
			a.IsHoneypot = honeypots[i]
		}
		if async {
			p.async[projectID] = append(p.async[projectID], a)
		} else {
			p.assets[projectID] = append(p.assets[projectID], a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": gin.H{"id": projectID}}})
}

func (p *Platform) signedURLs(c *gin.Context, req gqlRequest) {
	paths := stringArray(req.Variables["filePaths"])
	urls := make([]string, len(paths))
	for i, path := range paths {
		urls[i] = p.srv.URL + "/bucket/" + path
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"urls": urls}})
}

func whereID(vars map[string]interface{}) string {
	where, _ := vars["where"].(map[string]interface{})
	id, _ := where["id"].(string)
	return id
}

func stringArray(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}

func boolArray(v interface{}) []bool {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]bool, 0, len(raw))
	for _, item := range raw {
		b, _ := item.(bool)
		out = append(out, b)
	}
	return out
}

// UnmarshalMetadata decodes the stored metadata document of an asset.
func UnmarshalMetadata(a Asset) (map[string]interface{}, error) {
	var m map[string]interface{}
	err := json.Unmarshal([]byte(a.JSONMetadata), &m)
	return m, err
}
