package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/events"
)

// MountListing shows a product listing and keeps it fresh while orders touch its products.
func (s *service) MountListing(ctx context.Context, cred auth.Credential, query ListingQuery) (*ViewSnapshot, error) {
	page, err := s.listing(ctx, cred, query)
	if err != nil {
		return nil, err
	}
	query.Limit = page.Limit
	query.Offset = page.Offset

	mv := &mountedView{
		cred: cred,
		snapshot: ViewSnapshot{
			Kind:        ViewListing,
			Query:       &query,
			Listing:     page,
			RefreshedAt: s.now().UTC(),
		},
	}
	return s.mount(ctx, cred.SessionID, ViewListing, mv, func(ctx context.Context, evt events.OrderCompleted) error {
		return s.refreshListing(ctx, mv, evt)
	})
}

// MountDetail shows a product and re-reads it when an order touches it.
func (s *service) MountDetail(ctx context.Context, cred auth.Credential, productID string) (*ViewSnapshot, error) {
	detail, err := s.Product(ctx, cred, productID)
	if err != nil {
		return nil, err
	}

	mv := &mountedView{
		cred: cred,
		snapshot: ViewSnapshot{
			Kind:        ViewDetail,
			Detail:      detail,
			RefreshedAt: s.now().UTC(),
		},
	}
	return s.mount(ctx, cred.SessionID, ViewDetail, mv, func(ctx context.Context, evt events.OrderCompleted) error {
		return s.refreshDetail(ctx, mv, evt)
	})
}

func (s *service) mount(ctx context.Context, sessionID string, kind ViewKind, mv *mountedView, handler events.OrderCompletedHandler) (*ViewSnapshot, error) {
	name := fmt.Sprintf("catalog.%s.%s", kind, shortID(sessionID))
	sub, err := s.bus.SubscribeOrderCompleted(ctx, name, handler)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mount view")
	}
	mv.sub = sub

	key := viewKey{sessionID: sessionID, kind: kind}
	s.mu.Lock()
	previous := s.views[key]
	s.views[key] = mv
	s.mu.Unlock()
	if previous != nil {
		previous.sub.Close()
	}

	s.logg.Debug(s.logg.WithField(ctx, "view", string(kind)), "catalog.view.mounted")
	return mv.current(), nil
}

func (s *service) View(sessionID string, kind ViewKind) (*ViewSnapshot, error) {
	s.mu.Lock()
	mv, ok := s.views[viewKey{sessionID: sessionID, kind: kind}]
	s.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "view is not mounted").
			WithDetails(map[string]any{"view": string(kind)})
	}
	return mv.current(), nil
}

func (s *service) Unmount(sessionID string, kind ViewKind) {
	key := viewKey{sessionID: sessionID, kind: kind}
	s.mu.Lock()
	mv, ok := s.views[key]
	delete(s.views, key)
	s.mu.Unlock()
	if ok {
		mv.sub.Close()
	}
}

func (s *service) Forget(sessionID string) error {
	for _, kind := range []ViewKind{ViewListing, ViewDetail} {
		s.Unmount(sessionID, kind)
	}
	return nil
}

func (s *service) refreshListing(ctx context.Context, mv *mountedView, evt events.OrderCompleted) error {
	mv.mu.Lock()
	shown := mv.snapshot.Listing
	query := *mv.snapshot.Query
	cred := mv.cred
	mv.mu.Unlock()

	touched := false
	for _, p := range shown.Items {
		if evt.Touches(p.ID) {
			touched = true
			break
		}
	}
	if !touched {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	page, err := s.listing(ctx, cred, query)
	if err != nil {
		return err
	}

	mv.mu.Lock()
	mv.snapshot.Listing = page
	mv.snapshot.RefreshedAt = s.now().UTC()
	mv.snapshot.Refreshes++
	mv.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "order_id", evt.OrderID), "catalog.listing.refreshed")
	return nil
}

func (s *service) refreshDetail(ctx context.Context, mv *mountedView, evt events.OrderCompleted) error {
	mv.mu.Lock()
	productID := mv.snapshot.Detail.Product.ID
	cred := mv.cred
	mv.mu.Unlock()

	if !evt.Touches(productID) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	// Every detail view of the product wakes on the same event; one read serves them all.
	v, err, _ := s.refreshes.Do(productID, func() (any, error) {
		return s.backend.GetProduct(ctx, cred, productID)
	})
	if err != nil {
		return err
	}
	product := v.(*backend.Product)

	mv.mu.Lock()
	detail := *mv.snapshot.Detail
	detail.Product = NewProductDTO(*product)
	mv.snapshot.Detail = &detail
	mv.snapshot.RefreshedAt = s.now().UTC()
	mv.snapshot.Refreshes++
	mv.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "order_id", evt.OrderID), "catalog.detail.refreshed")
	return nil
}

func (mv *mountedView) current() *ViewSnapshot {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	snap := mv.snapshot
	if snap.Query != nil {
		q := *snap.Query
		snap.Query = &q
	}
	if snap.Listing != nil {
		page := *snap.Listing
		page.Items = make([]ProductDTO, len(snap.Listing.Items))
		copy(page.Items, snap.Listing.Items)
		snap.Listing = &page
	}
	if snap.Detail != nil {
		detail := *snap.Detail
		detail.Similar = make([]ProductDTO, len(snap.Detail.Similar))
		copy(detail.Similar, snap.Detail.Similar)
		snap.Detail = &detail
	}
	return &snap
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
