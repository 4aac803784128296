package api

import (
	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/pkg/openapi"
)

// BuildSpec generates the OpenAPI document for the session and storage
// endpoints. The result is serialized once at startup and served statically.
func BuildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.Server.Addr())

	spec.Components.AddSchemas(sessionSchemas())

	base := cfg.API.BasePath

	spec.Paths[base+"/sessions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List underwriting sessions",
			Tags:    []string{"sessions"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search by id or status", false),
				openapi.QueryParam("status", "string", "Filter by session status", false),
				openapi.QueryParam("pipeline_mode", "string", "Filter by pipeline mode", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated sessions", "SessionPage"),
			},
		},
		Post: &openapi.Operation{
			Summary: "Create a new underwriting session",
			Tags:    []string{"sessions"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created session", "Session"),
			},
		},
	}

	spec.Paths[base+"/sessions/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search sessions",
			Tags:        []string{"sessions"},
			RequestBody: openapi.RequestBodyJSON("SessionSearchRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated sessions", "SessionPage"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths[base+"/sessions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a session by id",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionIDParam()},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Session", "Session"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a session and its artifacts",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionIDParam()},
			Responses: map[int]*openapi.Response{
				204: {Description: "Session deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths[base+"/sessions/{id}/process"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit a ZIP archive of documents and run the analysis pipeline",
			Description: "Extracts text from every PDF in the archive and runs the full multi-stage underwriting analysis. Resubmission resets the session and starts a fresh run.",
			Tags:        []string{"sessions"},
			Parameters:  []*openapi.Parameter{sessionIDParam()},
			RequestBody: &openapi.RequestBody{
				Required: true,
				Content: map[string]*openapi.MediaType{
					"multipart/form-data": {
						Schema: &openapi.Schema{
							Type: "object",
							Properties: map[string]*openapi.Schema{
								"archive": {Type: "string", Format: "binary"},
							},
							Required: []string{"archive"},
						},
					},
				},
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Pipeline run outcome", "ProcessResponse"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths[base+"/sessions/{id}/status"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get the durable status document for a session",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionIDParam()},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Status document", "StatusDocument"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths[base+"/sessions/{id}/summary"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get the final underwriting summary for a session",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionIDParam()},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Final summary", "SummaryResponse"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths[base+"/storage"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List stored objects",
			Tags:    []string{"storage"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("prefix", "string", "Key prefix filter", false),
				openapi.QueryParam("marker", "string", "Continuation marker", false),
				openapi.QueryParam("max_results", "integer", "Maximum objects to return", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Object listing", "ObjectList"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	return spec
}

func sessionIDParam() *openapi.Parameter {
	return &openapi.Parameter{
		Name:        "id",
		In:          "path",
		Required:    true,
		Description: "Session identifier",
		Schema:      &openapi.Schema{Type: "string"},
	}
}

func sessionSchemas() map[string]*openapi.Schema {
	agentStatus := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"status":    {Type: "string", Enum: []any{"pending", "completed"}},
			"analysis":  {Type: "string"},
			"timestamp": {Type: "string"},
		},
	}

	agents := &openapi.Schema{
		Type:        "object",
		Description: "Per-stage status keyed by stage name",
		Properties:  map[string]*openapi.Schema{},
	}
	for _, stage := range pipeline.Order {
		agents.Properties[stage] = openapi.SchemaRef("AgentStatus")
	}

	return map[string]*openapi.Schema{
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "string"},
				"status":           {Type: "string", Enum: []any{"created", "in_progress", "completed"}},
				"document_count":   {Type: "integer"},
				"content_length":   {Type: "integer"},
				"completed_stages": {Type: "integer"},
				"pipeline_mode":    {Type: "string"},
				"created_at":       {Type: "string", Format: "date-time"},
				"updated_at":       {Type: "string", Format: "date-time"},
			},
		},
		"SessionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Session")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"SessionSearchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":          {Type: "integer"},
				"page_size":     {Type: "integer"},
				"search":        {Type: "string"},
				"status":        {Type: "string"},
				"pipeline_mode": {Type: "string"},
			},
		},
		"ProcessResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session": openapi.SchemaRef("Session"),
				"run": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"session_id":       {Type: "string"},
						"mode":             {Type: "string", Enum: []any{"planned", "sequential", "preflight"}},
						"summary":          {Type: "string"},
						"completed_stages": {Type: "integer"},
						"total_stages":     {Type: "integer"},
					},
				},
				"extraction": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"session_id":  {Type: "string"},
						"total_pages": {Type: "integer"},
						"valid_count": {Type: "integer"},
						"files": {
							Type: "array",
							Items: &openapi.Schema{
								Type: "object",
								Properties: map[string]*openapi.Schema{
									"name":        {Type: "string"},
									"page_count":  {Type: "integer"},
									"text_length": {Type: "integer"},
									"is_valid":    {Type: "boolean"},
								},
							},
						},
					},
				},
			},
		},
		"StatusDocument": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id":    {Type: "string"},
				"created_at":    {Type: "string"},
				"last_updated":  {Type: "string"},
				"status":        {Type: "string"},
				"agents":        agents,
				"final_summary": {Type: "string"},
				"processing_summary": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total_agents":          {Type: "integer"},
						"completed_agents":      {Type: "integer"},
						"pending_agents":        {Type: "integer"},
						"completion_percentage": {Type: "number"},
					},
				},
				"policy_generated": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"status":           {Type: "string", Enum: []any{"generated", "declined", "error"}},
						"timestamp":        {Type: "string"},
						"storage_location": {Type: "string"},
						"policy_number":    {Type: "string"},
						"detail":           {Type: "string"},
					},
				},
			},
		},
		"SummaryResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id": {Type: "string"},
				"status":     {Type: "string"},
				"summary":    {Type: "string"},
			},
		},
		"ObjectList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"objects": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"key":            {Type: "string"},
							"content_type":   {Type: "string"},
							"content_length": {Type: "integer"},
							"last_modified":  {Type: "string", Format: "date-time"},
						},
					},
				},
				"next_marker": {Type: "string"},
			},
		},
		"AgentStatus": agentStatus,
	}
}
