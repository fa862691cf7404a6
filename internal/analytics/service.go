package analytics

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-gateway/internal/orders"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/pricing"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

// Backend is the seller revenue part of the storefront API.
type Backend interface {
	RevenueOverview(ctx context.Context, cred auth.Credential) (*backend.OrderStatistics, error)
	RevenueChart(ctx context.Context, cred auth.Credential, period enums.RevenuePeriod) (*backend.RevenueChart, error)
}

// Rand is the random source for placeholder chart series.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// PointDTO is one chart bucket.
type PointDTO struct {
	Name             string        `json:"name"`
	Revenue          types.Numeric `json:"revenue"`
	RevenueFormatted string        `json:"revenue_formatted"`
	Orders           int           `json:"orders"`
	CompletedOrders  int           `json:"completed_orders"`
	CancelledOrders  int           `json:"cancelled_orders"`
}

// ChartDTO is the revenue series. Synthetic marks placeholder data shown while the
// backend chart is unavailable.
type ChartDTO struct {
	Period    enums.RevenuePeriod `json:"period"`
	Synthetic bool                `json:"synthetic"`
	Points    []PointDTO          `json:"points"`
}

// DashboardDTO bundles the overview and the chart.
type DashboardDTO struct {
	Overview orders.StatisticsDTO `json:"overview"`
	Chart    ChartDTO             `json:"chart"`
}

type Service interface {
	Overview(ctx context.Context, cred auth.Credential) (*orders.StatisticsDTO, error)
	Chart(ctx context.Context, cred auth.Credential, period string) (*ChartDTO, error)
	Dashboard(ctx context.Context, cred auth.Credential, period string) (*DashboardDTO, error)
}

// Option customises the service.
type Option func(*service)

// WithRand sets the random source used for placeholder series.
func WithRand(r Rand) Option {
	return func(s *service) {
		if r != nil {
			s.rnd = r
		}
	}
}

// WithClock sets the clock used to label weekly and yearly buckets.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	backend Backend
	logg    *logger.Logger
	now     func() time.Time

	rndMu sync.Mutex
	rnd   Rand
}

func NewService(api Backend, logg *logger.Logger, opts ...Option) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("analytics backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		backend: api,
		logg:    logg,
		now:     time.Now,
		rnd:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5f3759df)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Overview(ctx context.Context, cred auth.Credential) (*orders.StatisticsDTO, error) {
	stats, err := s.backend.RevenueOverview(ctx, cred)
	if err != nil {
		return nil, err
	}
	dto := orders.NewStatisticsDTO(*stats)
	return &dto, nil
}

// Chart returns the backend series, or a synthetic one when the backend cannot serve it.
// Authorization and validation failures are returned as errors.
func (s *service) Chart(ctx context.Context, cred auth.Credential, period string) (*ChartDTO, error) {
	parsed, err := enums.ParseRevenuePeriod(period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported revenue period").
			WithDetails(map[string]any{"period": period, "allowed": []string{"weekly", "monthly", "yearly"}})
	}

	chart, err := s.backend.RevenueChart(ctx, cred, parsed)
	switch {
	case err == nil && chart != nil && chart.Data != nil:
		return &ChartDTO{Period: parsed, Points: pointDTOs(chart.Data)}, nil
	case err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeUpstream, pkgerrors.CodeUpstreamUnavailable):
		return nil, err
	}

	fields := map[string]any{"period": parsed.String()}
	if err != nil {
		fields["error"] = err.Error()
	} else {
		fields["reason"] = "missing data"
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "analytics.chart.synthetic")
	return &ChartDTO{Period: parsed, Synthetic: true, Points: pointDTOs(s.synthetic(parsed))}, nil
}

func (s *service) Dashboard(ctx context.Context, cred auth.Credential, period string) (*DashboardDTO, error) {
	var (
		overview *orders.StatisticsDTO
		chart    *ChartDTO
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.Overview(gctx, cred)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = s.Chart(gctx, cred, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &DashboardDTO{Overview: *overview, Chart: *chart}, nil
}

type seriesShape struct {
	minOrders, spanOrders   int
	minRevenue, spanRevenue int
	completedBase           float64
	completedSpan           float64
	cancelledSpan           float64
}

var shapes = map[enums.RevenuePeriod]seriesShape{
	enums.RevenuePeriodWeekly:  {10, 30, 5_000_000, 15_000_000, 0.6, 0.3, 0.2},
	enums.RevenuePeriodMonthly: {20, 100, 10_000_000, 50_000_000, 0.6, 0.3, 0.2},
	enums.RevenuePeriodYearly:  {500, 1000, 100_000_000, 500_000_000, 0.7, 0.2, 0.15},
}

func (s *service) synthetic(period enums.RevenuePeriod) []backend.ChartPoint {
	shape := shapes[period]
	names := BucketNames(period, s.now())

	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	points := make([]backend.ChartPoint, 0, len(names))
	for _, name := range names {
		total := shape.minOrders + s.rnd.IntN(shape.spanOrders)
		completed := int(float64(total) * (shape.completedBase + s.rnd.Float64()*shape.completedSpan))
		cancelled := int(float64(total) * (s.rnd.Float64() * shape.cancelledSpan))
		revenue := shape.minRevenue + s.rnd.IntN(shape.spanRevenue)
		points = append(points, backend.ChartPoint{
			Name:            name,
			Revenue:         types.NumericFromInt(int64(revenue)),
			Orders:          total,
			CompletedOrders: completed,
			CancelledOrders: cancelled,
		})
	}
	return points
}

func pointDTOs(data []backend.ChartPoint) []PointDTO {
	out := make([]PointDTO, 0, len(data))
	for _, p := range data {
		dto := PointDTO{
			Name:            p.Name,
			Revenue:         p.Revenue,
			Orders:          p.Orders,
			CompletedOrders: p.CompletedOrders,
			CancelledOrders: p.CancelledOrders,
		}
		if d, ok := p.Revenue.Decimal(); ok {
			dto.RevenueFormatted = pricing.FormatVND(d)
		}
		out = append(out, dto)
	}
	return out
}
