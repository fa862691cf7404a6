package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

const dateLayout = "2006-01-02"

// Backend is the part of the storefront API that owns orders.
type Backend interface {
	ListCustomerOrders(ctx context.Context, cred auth.Credential, status string) ([]backend.Order, error)
	GetCustomerOrder(ctx context.Context, cred auth.Credential, orderID string) (*backend.Order, error)
	ConfirmDelivery(ctx context.Context, cred auth.Credential, orderID string) (string, error)
	CancelOrder(ctx context.Context, cred auth.Credential, orderID string) (string, error)
	ListSellerOrders(ctx context.Context, cred auth.Credential, filter backend.SellerOrderFilter) ([]backend.Order, error)
	GetSellerOrder(ctx context.Context, cred auth.Credential, orderID string) (*backend.Order, error)
	UpdateSellerOrderStatus(ctx context.Context, cred auth.Credential, orderID, status string) (*backend.Order, error)
	SellerOrderStatistics(ctx context.Context, cred auth.Credential) (*backend.OrderStatistics, error)
}

// SellerFilter narrows the seller order list. Dates are YYYY-MM-DD; blanks mean no bound.
type SellerFilter struct {
	Status    string
	StartDate string
	EndDate   string
}

// ActionResult is the outcome of a customer order action together with the re-read order.
type ActionResult struct {
	Message string    `json:"message"`
	Order   *OrderDTO `json:"order,omitempty"`
}

// Service exposes customer and seller order views.
type Service interface {
	List(ctx context.Context, cred auth.Credential, status string) ([]OrderDTO, error)
	Get(ctx context.Context, cred auth.Credential, orderID string) (*OrderDTO, error)
	ConfirmDelivery(ctx context.Context, cred auth.Credential, orderID string) (*ActionResult, error)
	Cancel(ctx context.Context, cred auth.Credential, orderID string) (*ActionResult, error)

	SellerList(ctx context.Context, cred auth.Credential, filter SellerFilter) ([]OrderDTO, error)
	SellerGet(ctx context.Context, cred auth.Credential, orderID string) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, cred auth.Credential, orderID, status string) (*OrderDTO, error)
	Statistics(ctx context.Context, cred auth.Credential) (*StatisticsDTO, error)
}

type service struct {
	backend Backend
	logg    *logger.Logger
}

// NewService builds the order service.
func NewService(api Backend, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("orders backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: api, logg: logg}, nil
}

func (s *service) List(ctx context.Context, cred auth.Credential, status string) ([]OrderDTO, error) {
	filter, err := enums.ParseOrderStatusFilter(status)
	if err != nil {
		return nil, invalidStatus(status, err)
	}
	list, err := s.backend.ListCustomerOrders(ctx, cred, filter.String())
	if err != nil {
		return nil, err
	}
	return newOrderDTOs(list), nil
}

func (s *service) Get(ctx context.Context, cred auth.Credential, orderID string) (*OrderDTO, error) {
	if err := requireOrderID(orderID); err != nil {
		return nil, err
	}
	order, err := s.backend.GetCustomerOrder(ctx, cred, orderID)
	if err != nil {
		return nil, err
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) ConfirmDelivery(ctx context.Context, cred auth.Credential, orderID string) (*ActionResult, error) {
	return s.act(ctx, cred, orderID, "orders.confirm_delivery", s.backend.ConfirmDelivery)
}

func (s *service) Cancel(ctx context.Context, cred auth.Credential, orderID string) (*ActionResult, error) {
	return s.act(ctx, cred, orderID, "orders.cancel", s.backend.CancelOrder)
}

func (s *service) act(ctx context.Context, cred auth.Credential, orderID, event string, call func(context.Context, auth.Credential, string) (string, error)) (*ActionResult, error) {
	if err := requireOrderID(orderID); err != nil {
		return nil, err
	}
	msg, err := call(ctx, cred, orderID)
	if err != nil {
		return nil, err
	}

	lctx := s.logg.WithField(ctx, "order_id", orderID)
	s.logg.Info(lctx, event)

	result := &ActionResult{Message: msg}
	order, err := s.backend.GetCustomerOrder(ctx, cred, orderID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(lctx, "error", err.Error()), "orders.reload.failed")
		return result, nil
	}
	dto := NewOrderDTO(*order)
	result.Order = &dto
	return result, nil
}

func (s *service) SellerList(ctx context.Context, cred auth.Credential, filter SellerFilter) ([]OrderDTO, error) {
	query, err := sellerQuery(filter)
	if err != nil {
		return nil, err
	}
	list, err := s.backend.ListSellerOrders(ctx, cred, query)
	if err != nil {
		return nil, err
	}
	return newOrderDTOs(list), nil
}

func (s *service) SellerGet(ctx context.Context, cred auth.Credential, orderID string) (*OrderDTO, error) {
	if err := requireOrderID(orderID); err != nil {
		return nil, err
	}
	order, err := s.backend.GetSellerOrder(ctx, cred, orderID)
	if err != nil {
		return nil, err
	}
	dto := NewOrderDTO(*order)
	return &dto, nil
}

// UpdateStatus forwards a status change; which transitions are allowed is up to the backend.
func (s *service) UpdateStatus(ctx context.Context, cred auth.Credential, orderID, status string) (*OrderDTO, error) {
	if err := requireOrderID(orderID); err != nil {
		return nil, err
	}
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, invalidStatus(status, err)
	}
	order, err := s.backend.UpdateSellerOrderStatus(ctx, cred, orderID, parsed.String())
	if err != nil {
		return nil, err
	}
	lctx := s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "status": parsed.String()})
	s.logg.Info(lctx, "orders.status_updated")
	dto := NewOrderDTO(*order)
	return &dto, nil
}

func (s *service) Statistics(ctx context.Context, cred auth.Credential) (*StatisticsDTO, error) {
	stats, err := s.backend.SellerOrderStatistics(ctx, cred)
	if err != nil {
		return nil, err
	}
	dto := NewStatisticsDTO(*stats)
	return &dto, nil
}

func sellerQuery(filter SellerFilter) (backend.SellerOrderFilter, error) {
	var query backend.SellerOrderFilter
	fields := map[string]string{}

	status, err := enums.ParseOrderStatusFilter(filter.Status)
	if err != nil {
		fields["status"] = "is not a known order status"
	} else if status != enums.OrderStatusAll {
		query.Status = status.String()
	}

	start, startOK := parseDate(filter.StartDate, "start_date", fields)
	end, endOK := parseDate(filter.EndDate, "end_date", fields)
	if startOK && endOK && !start.IsZero() && !end.IsZero() && end.Before(start) {
		fields["end_date"] = "must not be before start_date"
	}
	if len(fields) > 0 {
		return query, pkgerrors.New(pkgerrors.CodeValidation, "invalid order filter").
			WithDetails(map[string]any{"fields": fields})
	}

	query.StartDate = strings.TrimSpace(filter.StartDate)
	query.EndDate = strings.TrimSpace(filter.EndDate)
	return query, nil
}

func parseDate(value, field string, fields map[string]string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		fields[field] = "must be a date in YYYY-MM-DD form"
		return time.Time{}, false
	}
	return t, true
}

func requireOrderID(orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return nil
}

func invalidStatus(status string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status").
		WithDetails(map[string]any{"status": status})
}
