package arm

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// Page is the ARM list envelope.
type Page[T any] struct {
	Value    []*T    `json:"value"`
	NextLink *string `json:"nextLink,omitempty"`
}

// Resources is the CRUD engine for one resource type.
type Resources[T any] struct {
	client *Client
	schema Schema[T]
}

func NewResources[T any](client *Client, schema Schema[T]) *Resources[T] {
	return &Resources[T]{client: client, schema: schema}
}

func (r *Resources[T]) Client() *Client {
	return r.client
}

func (r *Resources[T]) Schema() Schema[T] {
	return r.schema
}

func (r *Resources[T]) Path(resourceGroup string, names ...string) (string, error) {
	return r.schema.Path(r.client.subscriptionID, resourceGroup, names...)
}

func (r *Resources[T]) Get(ctx context.Context, resourceGroup string, names ...string) (*T, error) {
	path, err := r.Path(resourceGroup, names...)
	if err != nil {
		return nil, err
	}
	return Do[T](ctx, r.client, http.MethodGet, path, r.schema.APIVersion, nil)
}

func (r *Resources[T]) GetByID(ctx context.Context, id string) (*T, error) {
	resourceGroup, names, err := r.schema.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, resourceGroup, names...)
}

func (r *Resources[T]) CreateOrUpdate(ctx context.Context, body any, resourceGroup string, names ...string) (*T, error) {
	path, err := r.Path(resourceGroup, names...)
	if err != nil {
		return nil, err
	}
	return DoLongRunning[T](ctx, r.client, http.MethodPut, path, r.schema.APIVersion, body)
}

func (r *Resources[T]) Update(ctx context.Context, body any, resourceGroup string, names ...string) (*T, error) {
	path, err := r.Path(resourceGroup, names...)
	if err != nil {
		return nil, err
	}
	return DoLongRunning[T](ctx, r.client, http.MethodPatch, path, r.schema.APIVersion, body,
		http.StatusOK, http.StatusAccepted)
}

func (r *Resources[T]) Delete(ctx context.Context, resourceGroup string, names ...string) error {
	path, err := r.Path(resourceGroup, names...)
	if err != nil {
		return err
	}
	_, err = DoLongRunning[struct{}](ctx, r.client, http.MethodDelete, path, r.schema.APIVersion, nil)
	return err
}

func (r *Resources[T]) DeleteByID(ctx context.Context, id string) error {
	resourceGroup, names, err := r.schema.ParseID(id)
	if err != nil {
		return err
	}
	return r.Delete(ctx, resourceGroup, names...)
}

// Action posts to a sub path of the resource, e.g. "start" or "config/appsettings/list".
func (r *Resources[T]) Action(ctx context.Context, action string, body any, resourceGroup string, names ...string) error {
	path, err := r.Path(resourceGroup, names...)
	if err != nil {
		return err
	}
	_, err = DoLongRunning[struct{}](ctx, r.client, http.MethodPost, path+"/"+action, r.schema.APIVersion, body)
	return err
}

func (r *Resources[T]) List(ctx context.Context) ([]*T, error) {
	path, err := r.schema.SubscriptionPath(r.client.subscriptionID)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, NewPager[T](r.client, path, r.schema.APIVersion))
}

func (r *Resources[T]) ListByResourceGroup(ctx context.Context, resourceGroup string, parents ...string) ([]*T, error) {
	path, err := r.schema.CollectionPath(r.client.subscriptionID, resourceGroup, parents...)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, NewPager[T](r.client, path, r.schema.APIVersion))
}

// NewPager pages through an ARM list endpoint following nextLink.
func NewPager[T any](client *Client, path, apiVersion string) *runtime.Pager[Page[T]] {
	return runtime.NewPager(runtime.PagingHandler[Page[T]]{
		More: func(page Page[T]) bool {
			return page.NextLink != nil && len(*page.NextLink) > 0
		},
		Fetcher: func(ctx context.Context, page *Page[T]) (Page[T], error) {
			var req *policy.Request
			var err error
			if page == nil {
				req, err = newRequest(ctx, client, http.MethodGet, path, apiVersion, nil)
			} else {
				req, err = runtime.NewRequest(ctx, http.MethodGet, *page.NextLink)
			}
			if err != nil {
				return Page[T]{}, err
			}
			resp, err := send(client, req, http.StatusOK)
			if err != nil {
				return Page[T]{}, err
			}
			var result Page[T]
			if err := runtime.UnmarshalAsJSON(resp, &result); err != nil {
				return Page[T]{}, err
			}
			return result, nil
		},
	})
}

func Collect[T any](ctx context.Context, pager *runtime.Pager[Page[T]]) ([]*T, error) {
	var items []*T
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
	}
	return items, nil
}
