package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/events"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/pagination"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

const refreshTimeout = 10 * time.Second

// Backend is the part of the storefront API the catalog reads.
type Backend interface {
	ListProducts(ctx context.Context, cred auth.Credential, sort enums.ProductSort) ([]backend.Product, error)
	SearchProducts(ctx context.Context, cred auth.Credential, q backend.ProductQuery) ([]backend.Product, error)
	GetProduct(ctx context.Context, cred auth.Credential, productID string) (*backend.Product, error)
	Categories(ctx context.Context, cred auth.Credential) ([]string, error)
	Recommendations(ctx context.Context, cred auth.Credential) ([]backend.Product, error)
	SimilarProducts(ctx context.Context, cred auth.Credential, productID string) ([]backend.Product, error)
}

// Subscriber registers order-completed listeners.
type Subscriber interface {
	SubscribeOrderCompleted(ctx context.Context, name string, handler events.OrderCompletedHandler) (*events.Subscription, error)
}

// Service exposes catalog reads and the mountable catalog/product views.
type Service interface {
	List(ctx context.Context, cred auth.Credential, sort string, page pagination.Params) (*types.Page[ProductDTO], error)
	Search(ctx context.Context, cred auth.Credential, query ListingQuery) (*types.Page[ProductDTO], error)
	Categories(ctx context.Context, cred auth.Credential) ([]string, error)
	Product(ctx context.Context, cred auth.Credential, productID string) (*ProductDetail, error)
	Recommendations(ctx context.Context, cred auth.Credential) ([]ProductDTO, error)

	MountListing(ctx context.Context, cred auth.Credential, query ListingQuery) (*ViewSnapshot, error)
	MountDetail(ctx context.Context, cred auth.Credential, productID string) (*ViewSnapshot, error)
	View(sessionID string, kind ViewKind) (*ViewSnapshot, error)
	Unmount(sessionID string, kind ViewKind)
	Forget(sessionID string) error
}

type viewKey struct {
	sessionID string
	kind      ViewKind
}

type mountedView struct {
	mu       sync.Mutex
	cred     auth.Credential
	snapshot ViewSnapshot
	sub      *events.Subscription
}

type service struct {
	backend Backend
	bus     Subscriber
	logg    *logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	views     map[viewKey]*mountedView
	refreshes singleflight.Group
}

// NewService builds the catalog service.
func NewService(api Backend, bus Subscriber, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("catalog backend required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event subscriber required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		backend: api,
		bus:     bus,
		logg:    logg,
		now:     time.Now,
		views:   map[viewKey]*mountedView{},
	}, nil
}

func (s *service) List(ctx context.Context, cred auth.Credential, sort string, page pagination.Params) (*types.Page[ProductDTO], error) {
	return s.listing(ctx, cred, ListingQuery{Sort: sort, Limit: page.Limit, Offset: page.Offset})
}

func (s *service) Search(ctx context.Context, cred auth.Credential, query ListingQuery) (*types.Page[ProductDTO], error) {
	return s.listing(ctx, cred, query)
}

func (s *service) listing(ctx context.Context, cred auth.Credential, query ListingQuery) (*types.Page[ProductDTO], error) {
	q, err := productQuery(query)
	if err != nil {
		return nil, err
	}

	var products []backend.Product
	if q.Keyword != "" || q.Category != "" {
		products, err = s.backend.SearchProducts(ctx, cred, q)
	} else {
		products, err = s.backend.ListProducts(ctx, cred, q.Sort)
	}
	if err != nil {
		return nil, err
	}

	page := pagination.Window(NewProductDTOs(products), pagination.Params{Limit: query.Limit, Offset: query.Offset})
	return &page, nil
}

func (s *service) Categories(ctx context.Context, cred auth.Credential) ([]string, error) {
	categories, err := s.backend.Categories(ctx, cred)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Product fetches a product and its similar products together. Similar products are
// best effort.
func (s *service) Product(ctx context.Context, cred auth.Credential, productID string) (*ProductDetail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var (
		product *backend.Product
		similar []backend.Product
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		product, err = s.backend.GetProduct(ctx, cred, productID)
		return err
	})
	g.Go(func() error {
		found, err := s.backend.SimilarProducts(ctx, cred, productID)
		if err != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{"product_id": productID, "error": err.Error()})
			s.logg.Warn(lctx, "catalog.similar.failed")
			return nil
		}
		similar = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	related := make([]backend.Product, 0, len(similar))
	for _, p := range similar {
		if p.ID != productID {
			related = append(related, p)
		}
	}
	return &ProductDetail{Product: NewProductDTO(*product), Similar: NewProductDTOs(related)}, nil
}

func (s *service) Recommendations(ctx context.Context, cred auth.Credential) ([]ProductDTO, error) {
	if cred.IsAnonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to see recommendations")
	}
	products, err := s.backend.Recommendations(ctx, cred)
	if err != nil {
		return nil, err
	}
	return NewProductDTOs(products), nil
}

func productQuery(query ListingQuery) (backend.ProductQuery, error) {
	q := backend.ProductQuery{
		Keyword:  strings.TrimSpace(query.Keyword),
		Category: strings.TrimSpace(query.Category),
	}
	if strings.TrimSpace(query.Sort) != "" {
		sort, err := enums.ParseProductSort(strings.TrimSpace(query.Sort))
		if err != nil {
			return q, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported sort order").
				WithDetails(map[string]any{"sort": query.Sort})
		}
		q.Sort = sort
	}
	return q, nil
}
