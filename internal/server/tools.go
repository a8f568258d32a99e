package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pixelle/internal/probe"
	"pixelle/internal/provider"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_config_status",
		mcp.WithDescription("Show the configured workflow engine, model providers and default model"),
	), s.handleConfigStatus)

	s.mcp.AddTool(mcp.NewTool("check_engine",
		mcp.WithDescription("Check whether the workflow engine answers on /system_stats"),
	), s.handleCheckEngine)

	s.mcp.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the models configured for each provider"),
		mcp.WithString("provider",
			mcp.Description("Restrict the listing to one provider id"),
		),
	), s.handleListModels)

	s.mcp.AddTool(mcp.NewTool("upload_file",
		mcp.WithDescription("Download a file from a URL into the file store and return its link"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("http or https URL of the file"),
		),
	), s.handleUploadFile)

	s.mcp.AddTool(mcp.NewTool("get_file_url",
		mcp.WithDescription("Return the link of a stored file"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("File id as returned by upload_file"),
		),
	), s.handleGetFileURL)
}

type providerStatus struct {
	ID       provider.ID `json:"id"`
	Endpoint string      `json:"endpoint"`
	Models   []string    `json:"models"`
}

type configStatus struct {
	Status       string           `json:"status"`
	Engine       string           `json:"engine"`
	Providers    []providerStatus `json:"providers"`
	DefaultModel string           `json:"default_model,omitempty"`
	ReadURL      string           `json:"read_url"`
}

func (s *Server) handleConfigStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings := s.Settings()
	out := configStatus{
		Status:       string(s.store.Status()),
		Engine:       settings.Config.Engine.Endpoint,
		Providers:    []providerStatus{},
		DefaultModel: settings.DefaultModel(),
		ReadURL:      settings.ReadURL(),
	}
	for _, p := range settings.Config.Providers.All() {
		out.Providers = append(out.Providers, providerStatus{
			ID:       p.ID,
			Endpoint: p.ResolvedEndpoint(),
			Models:   p.Models,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleCheckEngine(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpoint := s.Settings().Config.Engine.Endpoint
	if err := s.engine.Engine(ctx, endpoint); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Engine at %s is not reachable: %s", endpoint, probe.Describe(err))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Engine at %s is reachable", endpoint)), nil
}

func (s *Server) handleListModels(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	providers := s.Settings().Config.Providers

	models := map[provider.ID][]string{}
	if raw := request.GetString("provider", ""); raw != "" {
		id, err := provider.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, ok := providers.Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Provider %s is not configured", id)), nil
		}
		models[id] = p.Models
		return jsonResult(models)
	}

	for _, p := range providers.All() {
		models[p.ID] = p.Models
	}
	return jsonResult(models)
}

func (s *Server) handleUploadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required"), nil
	}
	info, err := s.files().SaveURL(ctx, u)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to store %s: %v", u, err)), nil
	}
	return jsonResult(info)
}

func (s *Server) handleGetFileURL(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}
	info, err := s.files().Stat(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(info.URL), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
