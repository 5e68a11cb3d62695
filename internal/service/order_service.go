package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodcart/internal/metrics"
	"foodcart/internal/model"
	"foodcart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	phoneRegion string
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. phoneRegion is the ISO
// country code used for numbers without an international prefix.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	phoneRegion string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		phoneRegion: phoneRegion,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Register validates the payload and creates the order with price snapshots.
func (s *orderService) Register(ctx context.Context, payload *model.OrderPayload) (*model.OrderResponse, error) {
	req, verrs := validateOrderPayload(payload, s.phoneRegion)
	if len(verrs) > 0 {
		s.logger.Warn().Int("error_count", len(verrs)).Str("errors", verrs.Error()).Msg("order rejected")
		return nil, verrs
	}

	prices, err := s.productPrices(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order := &model.Order{
		ID:            uuid.New(),
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Phonenumber:   req.Phonenumber,
		Address:       req.Address,
		Status:        model.StatusProcessing,
		CreatedAt:     time.Now().UTC(),
		PaymentMethod: model.PaymentUnknown,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     prices[item.ProductID],
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersRegistered.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Str("total", model.OrderTotal(orderItems).String()).
		Msg("order created successfully")

	return toOrderResponse(order, orderItems), nil
}

// productPrices loads the current price of every ordered product. Unknown
// products are reported as validation errors.
func (s *orderService) productPrices(ctx context.Context, items []model.OrderItemRequest) (map[int64]decimal.Decimal, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to load ordered products")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	prices := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var verrs model.ValidationErrors
	for i, item := range items {
		if _, ok := prices[item.ProductID]; !ok {
			verrs.Add(fmt.Sprintf("products[%d].product", i), fmt.Sprintf("invalid product id %d", item.ProductID))
		}
	}
	if len(verrs) > 0 {
		s.logger.Warn().Str("errors", verrs.Error()).Msg("order references unknown products")
		return nil, verrs
	}

	return prices, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return toOrderResponse(order, items), nil
}

func toOrderResponse(order *model.Order, items []model.OrderItem) *model.OrderResponse {
	products := make([]model.OrderItemRequest, len(items))
	for i, item := range items {
		products[i] = model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	return &model.OrderResponse{
		ID:          order.ID,
		Firstname:   order.Firstname,
		Lastname:    order.Lastname,
		Phonenumber: order.Phonenumber,
		Address:     order.Address,
		Products:    products,
	}
}

// IsValidationError reports whether err carries user-facing validation errors.
func IsValidationError(err error) (model.ValidationErrors, bool) {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
