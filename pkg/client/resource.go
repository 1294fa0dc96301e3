package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/fibradoc/fibradoc/pkg/types"
)

// ListOptions configures list pagination, search and filters. Zero values
// are omitted and the server defaults apply.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// Resource is the CRUD client of one collection. T is the wire entity, C
// and P the create and patch bodies.
type Resource[T, C, P any] struct {
	c      *Client
	entity types.Entity
}

func newResource[T, C, P any](c *Client, entity types.Entity) *Resource[T, C, P] {
	return &Resource[T, C, P]{c: c, entity: entity}
}

// Entity returns the collection descriptor.
func (r *Resource[T, C, P]) Entity() types.Entity {
	return r.entity
}

// List returns one page of the collection.
func (r *Resource[T, C, P]) List(ctx context.Context, opts ListOptions) (types.Page[T], error) {
	data, err := r.c.do(ctx, http.MethodGet, buildListPath(r.entity, opts), nil)
	if err != nil {
		return types.Page[T]{}, fmt.Errorf("listing %s: %w", r.entity.Path, err)
	}
	return types.DecodeList[T](data, r.entity.Path)
}

// Get returns one entity by ID.
func (r *Resource[T, C, P]) Get(ctx context.Context, id string) (T, error) {
	var out T
	path, err := itemPath(r.entity, id)
	if err != nil {
		return out, err
	}
	data, err := r.c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return out, fmt.Errorf("getting %s %q: %w", r.entity.Key, id, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", r.entity.Key, err)
	}
	return out, nil
}

// Create posts a new entity.
func (r *Resource[T, C, P]) Create(ctx context.Context, req C) (types.Mutation[T], error) {
	data, err := r.c.do(ctx, http.MethodPost, apiPrefix+"/"+r.entity.Path, req)
	if err != nil {
		return types.Mutation[T]{}, fmt.Errorf("creating %s: %w", r.entity.Key, err)
	}
	return types.DecodeMutation[T](data, r.entity.Key)
}

// Update patches an entity. Only non-nil fields of req are sent.
func (r *Resource[T, C, P]) Update(ctx context.Context, id string, req P) (types.Mutation[T], error) {
	path, err := itemPath(r.entity, id)
	if err != nil {
		return types.Mutation[T]{}, err
	}
	data, err := r.c.do(ctx, http.MethodPatch, path, req)
	if err != nil {
		return types.Mutation[T]{}, fmt.Errorf("updating %s %q: %w", r.entity.Key, id, err)
	}
	return types.DecodeMutation[T](data, r.entity.Key)
}

// Delete removes an entity and returns the server confirmation message.
func (r *Resource[T, C, P]) Delete(ctx context.Context, id string) (string, error) {
	path, err := itemPath(r.entity, id)
	if err != nil {
		return "", err
	}
	data, err := r.c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return "", fmt.Errorf("deleting %s %q: %w", r.entity.Key, id, err)
	}
	m, err := types.DecodeMutation[T](data, "")
	if err != nil {
		return "", err
	}
	return m.Message, nil
}

func itemPath(entity types.Entity, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%s id is required", entity.Key)
	}
	return apiPrefix + "/" + entity.Path + "/" + url.PathEscape(trimmed), nil
}

func buildListPath(entity types.Entity, opts ListOptions) string {
	params := url.Values{}
	if opts.Page > 0 {
		params.Set("pagina", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		params.Set("limite", strconv.Itoa(opts.PageSize))
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		params.Set("busca", search)
	}

	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(opts.Filters[k]); v != "" {
			params.Set(k, v)
		}
	}

	path := apiPrefix + "/" + entity.Path
	if encoded := params.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
