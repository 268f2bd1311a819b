package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"littlelemon/entity"
	"littlelemon/events"
	"littlelemon/logger"
	"littlelemon/pkg/apperr"
	"littlelemon/policy"
	"littlelemon/repository"

	"gorm.io/gorm"
)

// OrderService is the order engine: checkout, reads, staff updates and
// deletion.
type OrderService struct {
	DB        *gorm.DB
	Repo      *repository.OrderRepository
	CartRepo  *repository.CartRepository
	UserRepo  *repository.UserRepository
	Events    events.Publisher
	TxOptions *sql.TxOptions // checkout isolation, nil for the driver default
	Log       *slog.Logger
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	userRepo *repository.UserRepository,
	pub events.Publisher,
	txOpts *sql.TxOptions,
	log *slog.Logger,
) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{
		DB: db, Repo: repo, CartRepo: cartRepo, UserRepo: userRepo,
		Events: pub, TxOptions: txOpts, Log: log,
	}
}

// OrderPatch is an update body. Fields lists the JSON keys that were present;
// a present delivery_crew with a nil DeliveryCrew unassigns the order.
type OrderPatch struct {
	Fields       []string
	Status       *bool
	DeliveryCrew *uint
}

func (s *OrderService) transaction(ctx context.Context, fn func(tx *gorm.DB) error, opts *sql.TxOptions) error {
	if opts == nil {
		return s.DB.WithContext(ctx).Transaction(fn)
	}
	return s.DB.WithContext(ctx).Transaction(fn, opts)
}

// Checkout turns the caller's cart into an order in one transaction. Only
// the cart lines read at the start are deleted; if any of them vanished in
// the meantime the whole checkout rolls back with ErrConflictRetry.
func (s *OrderService) Checkout(ctx context.Context, id policy.Identity) (*entity.Order, error) {
	if err := policy.Decide(id, policy.OrderCheckout); err != nil {
		return nil, err
	}

	var orderID uint
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		lines, err := s.CartRepo.Lines(tx, id.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.ErrEmptyCart
		}

		items := make([]entity.OrderItem, 0, len(lines))
		ids := make([]uint, 0, len(lines))
		for _, l := range lines {
			items = append(items, FreezeOrderItem(l))
			ids = append(ids, l.ID)
		}

		order := entity.Order{
			UserID: id.UserID,
			Status: false,
			Total:  OrderTotal(items),
			Date:   entity.Today(),
			Items:  items,
		}
		if err := checkAmount("total", order.Total); err != nil {
			return err
		}
		if err := s.Repo.Create(tx, &order); err != nil {
			return err
		}
		if err := s.CartRepo.DeleteLines(tx, id.UserID, ids); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	}, s.TxOptions)
	if err != nil {
		return nil, repository.TranslateTx(err)
	}

	order, err := s.Repo.FindByID(s.DB.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// GetOrder returns one order. Customers may only read their own.
func (s *OrderService) GetOrder(ctx context.Context, id policy.Identity, orderID uint) (*entity.Order, error) {
	if err := policy.Decide(id, policy.OrderRead); err != nil {
		return nil, err
	}
	order, err := s.Repo.FindByID(s.DB.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanReadOrder(id, order.UserID); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder applies a staff update. Delivery crew may only set status;
// managers may set status and assign or unassign delivery crew.
func (s *OrderService) UpdateOrder(ctx context.Context, id policy.Identity, orderID uint, patch OrderPatch) (*entity.Order, error) {
	if err := policy.CheckOrderPatch(id, patch.Fields); err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(patch.Fields))
	for _, f := range patch.Fields {
		switch f {
		case policy.FieldStatus:
			if patch.Status == nil {
				return nil, fmt.Errorf("%w: status must be a boolean", apperr.ErrInvalidPatch)
			}
			fields["status"] = *patch.Status
		case policy.FieldDeliveryCrew:
			if patch.DeliveryCrew == nil {
				fields["delivery_crew_id"] = nil
			} else {
				fields["delivery_crew_id"] = *patch.DeliveryCrew
			}
		}
	}

	var order *entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.FindByID(tx, orderID); err != nil {
			return err
		}
		if patch.DeliveryCrew != nil {
			ok, err := s.UserRepo.IsInGroup(tx, *patch.DeliveryCrew, policy.GroupDeliveryCrew)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: user %d is not in the %s group",
					apperr.ErrInvalidPatch, *patch.DeliveryCrew, policy.GroupDeliveryCrew)
			}
		}
		if err := s.Repo.UpdateFields(tx, orderID, fields); err != nil {
			return err
		}
		var err error
		order, err = s.Repo.FindByID(tx, orderID)
		return err
	})
	if err != nil {
		return nil, repository.TranslateTx(err)
	}

	s.publish(ctx, events.OrderUpdated, order)
	return order, nil
}

// DeleteOrder removes an order and its items. Managers only.
func (s *OrderService) DeleteOrder(ctx context.Context, id policy.Identity, orderID uint) error {
	if err := policy.Decide(id, policy.OrderDelete); err != nil {
		return err
	}

	var order *entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = s.Repo.FindByID(tx, orderID); err != nil {
			return err
		}
		return s.Repo.Delete(tx, orderID)
	})
	if err != nil {
		return repository.TranslateTx(err)
	}

	s.publish(ctx, events.OrderDeleted, order)
	return nil
}

// ListOrders returns the orders visible to the caller. The scope filter
// overrides whatever owner or assignee the query carried.
func (s *OrderService) ListOrders(ctx context.Context, id policy.Identity, q repository.OrderQuery) ([]entity.Order, int64, error) {
	if err := policy.Decide(id, policy.OrderList); err != nil {
		return nil, 0, err
	}

	q.UserID, q.DeliveryCrewID = nil, nil
	switch policy.OrderScope(id) {
	case policy.ScopeAll:
	case policy.ScopeAssigned:
		q.DeliveryCrewID = &id.UserID
	case policy.ScopeOwned:
		q.UserID = &id.UserID
	default:
		return nil, 0, apperr.ErrForbidden
	}
	return s.Repo.List(s.DB.WithContext(ctx), q)
}

func (s *OrderService) publish(ctx context.Context, typ events.Type, order *entity.Order) {
	if err := s.Events.Publish(ctx, events.FromOrder(typ, order)); err != nil {
		s.Log.Warn("publish order event failed",
			slog.String("type", string(typ)),
			slog.Uint64("order_id", uint64(order.ID)),
			logger.Err(err))
	}
}
