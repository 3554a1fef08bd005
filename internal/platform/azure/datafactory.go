package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/execute"
)

const factoryAPIVersion = "2018-06-01"

// FactoryService manages data factory triggers, linked services and
// pipeline runs through the resource-manager plane.
type FactoryService struct {
	client *Client
}

func NewFactoryService(c *Client) *FactoryService { return &FactoryService{client: c} }

func (s *FactoryService) factoryURL(ref domain.ResourceRef, tail string) string {
	t := fmt.Sprintf("factories/%s/%s", url.PathEscape(ref.Name), tail)
	return s.client.resourcePath(ref.ResourceGroup, "Microsoft.DataFactory", t)
}

type triggerResource struct {
	Name       string `json:"name"`
	Properties struct {
		Type         string `json:"type"`
		RuntimeState string `json:"runtimeState"`
	} `json:"properties"`
}

func (s *FactoryService) ListTriggers(ctx context.Context, ref domain.ResourceRef) ([]execute.Trigger, error) {
	raw, err := s.client.getPaged(ctx, s.client.arm, s.factoryURL(ref, "triggers?api-version="+factoryAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("list triggers in %s: %w", ref.Name, err)
	}
	triggers := make([]execute.Trigger, 0, len(raw))
	for _, item := range raw {
		var tr triggerResource
		if err := json.Unmarshal(item, &tr); err != nil {
			return nil, fmt.Errorf("decode trigger: %w", err)
		}
		triggers = append(triggers, execute.Trigger{
			Name:         tr.Name,
			Type:         tr.Properties.Type,
			RuntimeState: tr.Properties.RuntimeState,
		})
	}
	return triggers, nil
}

func (s *FactoryService) StopTrigger(ctx context.Context, ref domain.ResourceRef, name string) error {
	return s.postTriggerAction(ctx, ref, name, "stop")
}

func (s *FactoryService) StartTrigger(ctx context.Context, ref domain.ResourceRef, name string) error {
	return s.postTriggerAction(ctx, ref, name, "start")
}

func (s *FactoryService) postTriggerAction(ctx context.Context, ref domain.ResourceRef, name, action string) error {
	tail := fmt.Sprintf("triggers/%s/%s?api-version=%s", url.PathEscape(name), action, factoryAPIVersion)
	if err := s.client.do(ctx, s.client.arm, http.MethodPost, s.factoryURL(ref, tail), nil, nil); err != nil {
		return fmt.Errorf("%s trigger %s in %s: %w", action, name, ref.Name, err)
	}
	return nil
}

type linkedServiceResource struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// ListLinkedServices returns the factory's linked services, filtered to the
// given type names when types is non-empty.
func (s *FactoryService) ListLinkedServices(ctx context.Context, ref domain.ResourceRef, types []string) ([]execute.LinkedService, error) {
	raw, err := s.client.getPaged(ctx, s.client.arm, s.factoryURL(ref, "linkedservices?api-version="+factoryAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("list linked services in %s: %w", ref.Name, err)
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var services []execute.LinkedService
	for _, item := range raw {
		var ls linkedServiceResource
		if err := json.Unmarshal(item, &ls); err != nil {
			return nil, fmt.Errorf("decode linked service: %w", err)
		}
		typ, _ := ls.Properties["type"].(string)
		if len(want) > 0 && !want[typ] {
			continue
		}
		services = append(services, execute.LinkedService{
			Name:       ls.Name,
			Type:       typ,
			Properties: ls.Properties,
		})
	}
	return services, nil
}

// UpdateLinkedService republishes a linked service with its full properties
// payload. The factory API replaces, not merges, so callers pass everything
// they read.
func (s *FactoryService) UpdateLinkedService(ctx context.Context, ref domain.ResourceRef, ls execute.LinkedService) error {
	tail := fmt.Sprintf("linkedservices/%s?api-version=%s", url.PathEscape(ls.Name), factoryAPIVersion)
	body := map[string]any{"properties": ls.Properties}
	if err := s.client.do(ctx, s.client.arm, http.MethodPut, s.factoryURL(ref, tail), body, nil); err != nil {
		return fmt.Errorf("update linked service %s in %s: %w", ls.Name, ref.Name, err)
	}
	return nil
}

type managedEndpointResource struct {
	Name       string `json:"name"`
	Properties struct {
		FQDNs                 []string `json:"fqdns"`
		GroupID               string   `json:"groupId"`
		PrivateLinkResourceID string   `json:"privateLinkResourceId"`
	} `json:"properties"`
}

func (s *FactoryService) managedEndpointURL(ref domain.ResourceRef, name string) string {
	tail := fmt.Sprintf("managedVirtualNetworks/default/managedPrivateEndpoints/%s?api-version=%s",
		url.PathEscape(name), factoryAPIVersion)
	return s.factoryURL(ref, tail)
}

// GetManagedEndpoint reads a managed private endpoint from the factory's
// default managed virtual network. A missing endpoint returns ok=false.
func (s *FactoryService) GetManagedEndpoint(ctx context.Context, ref domain.ResourceRef, name string) (execute.ManagedEndpoint, bool, error) {
	var res managedEndpointResource
	if err := s.client.do(ctx, s.client.arm, http.MethodGet, s.managedEndpointURL(ref, name), nil, &res); err != nil {
		if isNotFound(err) {
			return execute.ManagedEndpoint{}, false, nil
		}
		return execute.ManagedEndpoint{}, false, fmt.Errorf("get managed private endpoint %s in %s: %w", name, ref.Name, err)
	}
	return execute.ManagedEndpoint{
		Name:                  name,
		FQDNs:                 res.Properties.FQDNs,
		GroupID:               res.Properties.GroupID,
		PrivateLinkResourceID: res.Properties.PrivateLinkResourceID,
	}, true, nil
}

// UpdateManagedEndpoint republishes an endpoint's fqdn list. The group and
// private-link ids must ride along because the API replaces the whole
// properties payload.
func (s *FactoryService) UpdateManagedEndpoint(ctx context.Context, ref domain.ResourceRef, ep execute.ManagedEndpoint) error {
	body := map[string]any{"properties": map[string]any{
		"fqdns":                 ep.FQDNs,
		"groupId":               ep.GroupID,
		"privateLinkResourceId": ep.PrivateLinkResourceID,
	}}
	if err := s.client.do(ctx, s.client.arm, http.MethodPut, s.managedEndpointURL(ref, ep.Name), body, nil); err != nil {
		return fmt.Errorf("update managed private endpoint %s in %s: %w", ep.Name, ref.Name, err)
	}
	return nil
}

// RunPipeline starts a pipeline run and returns its run id.
func (s *FactoryService) RunPipeline(ctx context.Context, ref domain.ResourceRef, pipeline string, params map[string]any) (string, error) {
	tail := fmt.Sprintf("pipelines/%s/createRun?api-version=%s", url.PathEscape(pipeline), factoryAPIVersion)
	var out struct {
		RunID string `json:"runId"`
	}
	var body any
	if len(params) > 0 {
		body = params
	} else {
		body = map[string]any{}
	}
	if err := s.client.do(ctx, s.client.arm, http.MethodPost, s.factoryURL(ref, tail), body, &out); err != nil {
		return "", fmt.Errorf("run pipeline %s in %s: %w", pipeline, ref.Name, err)
	}
	return out.RunID, nil
}

// PipelineRunStatus reports the current status of a pipeline run, one of
// Queued, InProgress, Succeeded, Failed, Canceling or Cancelled.
func (s *FactoryService) PipelineRunStatus(ctx context.Context, ref domain.ResourceRef, runID string) (string, error) {
	tail := fmt.Sprintf("pipelineruns/%s?api-version=%s", url.PathEscape(runID), factoryAPIVersion)
	var out struct {
		Status string `json:"status"`
	}
	if err := s.client.do(ctx, s.client.arm, http.MethodGet, s.factoryURL(ref, tail), nil, &out); err != nil {
		return "", fmt.Errorf("get pipeline run %s in %s: %w", runID, ref.Name, err)
	}
	return out.Status, nil
}
