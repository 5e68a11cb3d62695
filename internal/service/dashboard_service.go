package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodcart/internal/geo"
	"foodcart/internal/metrics"
	"foodcart/internal/model"
	"foodcart/internal/ranking"
	"foodcart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DashboardOptions tunes the order assignment view.
type DashboardOptions struct {
	// Workers bounds how many orders are processed at once.
	Workers int
	// NumericSort orders candidates by distance value instead of label text.
	NumericSort bool
}

// dashboardService implements DashboardService.
type dashboardService struct {
	restaurantRepo repository.RestaurantRepository
	productRepo    repository.ProductRepository
	menuRepo       repository.MenuRepository
	orderRepo      repository.OrderRepository
	resolver       geo.Resolver
	opts           DashboardOptions
	logger         zerolog.Logger
	now            func() time.Time
}

// NewDashboardService creates the staff dashboard service.
func NewDashboardService(
	restaurantRepo repository.RestaurantRepository,
	productRepo repository.ProductRepository,
	menuRepo repository.MenuRepository,
	orderRepo repository.OrderRepository,
	resolver geo.Resolver,
	opts DashboardOptions,
	logger zerolog.Logger,
) DashboardService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &dashboardService{
		restaurantRepo: restaurantRepo,
		productRepo:    productRepo,
		menuRepo:       menuRepo,
		orderRepo:      orderRepo,
		resolver:       resolver,
		opts:           opts,
		logger:         logger.With().Str("service", "dashboard").Logger(),
		now:            time.Now,
	}
}

func (s *dashboardService) Restaurants(ctx context.Context) ([]model.Restaurant, error) {
	restaurants, err := s.restaurantRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list restaurants")
		return nil, fmt.Errorf("failed to get restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *dashboardService) AvailabilityGrid(ctx context.Context) (*model.AvailabilityGrid, error) {
	restaurants, err := s.restaurantRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list restaurants")
		return nil, fmt.Errorf("failed to get restaurants: %w", err)
	}

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	entries, err := s.menuRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list menu entries")
		return nil, fmt.Errorf("failed to get menu entries: %w", err)
	}

	type key struct{ restaurant, product int64 }
	available := make(map[key]bool, len(entries))
	for _, e := range entries {
		available[key{e.RestaurantID, e.ProductID}] = e.Availability
	}

	rows := make([]model.AvailabilityRow, len(products))
	for i, p := range products {
		flags := make([]bool, len(restaurants))
		for j, r := range restaurants {
			flags[j] = available[key{r.ID, p.ID}]
		}
		rows[i] = model.AvailabilityRow{Product: p, Availability: flags}
	}

	return &model.AvailabilityGrid{Restaurants: restaurants, Rows: rows}, nil
}

// OrderAssignments builds the assignment view. Orders are processed on a
// bounded pool; a failing order gets an Error instead of failing the view.
func (s *dashboardService) OrderAssignments(ctx context.Context) ([]model.OrderAssignment, error) {
	start := time.Now()
	defer func() {
		metrics.AssignmentRenderDuration.Observe(time.Since(start).Seconds())
	}()

	orders, err := s.orderRepo.ListOpen(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list open orders")
		return nil, fmt.Errorf("failed to get open orders: %w", err)
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.orderRepo.ItemsForOrders(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load order items")
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	assignments := make([]model.OrderAssignment, len(orders))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i := range orders {
		g.Go(func() error {
			assignments[i] = s.assignment(ctx, orders[i], items[orders[i].ID])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("order_count", len(assignments)).
		Dur("elapsed", time.Since(start)).
		Msg("built order assignments")

	return assignments, nil
}

func (s *dashboardService) assignment(ctx context.Context, order model.Order, items []model.OrderItem) model.OrderAssignment {
	if items == nil {
		items = []model.OrderItem{}
	}
	result := model.OrderAssignment{
		Order:      order,
		Items:      items,
		Total:      model.OrderTotal(items),
		Candidates: []model.RankedRestaurant{},
	}

	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	restaurants, err := s.menuRepo.RestaurantsStockingAll(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to find capable restaurants")
		result.Error = "failed to find restaurants for this order"
		return result
	}

	origin := s.locate(ctx, order.Address)

	candidates := make([]ranking.Candidate, len(restaurants))
	for i, r := range restaurants {
		candidates[i] = ranking.Candidate{Restaurant: r, Coordinates: s.locate(ctx, r.Address)}
	}

	result.Candidates = ranking.Rank(origin, candidates, ranking.Options{NumericOrder: s.opts.NumericSort})
	return result
}

// locate resolves an address, returning nil when it is unknown.
func (s *dashboardService) locate(ctx context.Context, address string) *model.Coordinates {
	coords, err := s.resolver.Resolve(ctx, address)
	if err != nil {
		if !errors.Is(err, geo.ErrNotFound) {
			s.logger.Warn().Err(err).Str("address", address).Msg("failed to resolve address")
		}
		return nil
	}
	return &coords
}

func (s *dashboardService) AssignRestaurant(ctx context.Context, orderID uuid.UUID, restaurantID int64) error {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		s.logger.Error().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to get restaurant")
		return fmt.Errorf("failed to get restaurant: %w", err)
	}
	if restaurant == nil {
		return model.ErrRestaurantNotFound
	}

	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	capable, err := s.menuRepo.RestaurantsStockingAll(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to find capable restaurants")
		return fmt.Errorf("failed to check restaurant menu: %w", err)
	}

	found := false
	for _, c := range capable {
		if c.ID == restaurantID {
			found = true
			break
		}
	}
	if !found {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Int64("restaurant_id", restaurantID).
			Msg("restaurant cannot cook the whole order")
		return model.ErrRestaurantNotCapable
	}

	if err := s.orderRepo.AssignRestaurant(ctx, orderID, restaurantID); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("failed to assign restaurant: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int64("restaurant_id", restaurantID).
		Msg("restaurant assigned")

	return nil
}

func (s *dashboardService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	now := s.now().UTC()
	order.Status = status
	if status != model.StatusProcessing && order.CalledAt == nil {
		order.CalledAt = &now
	}
	if status == model.StatusDone && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(status)).
		Msg("order status updated")

	return order, nil
}
