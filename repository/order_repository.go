package repository

import (
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository methods take the handle to run on, like CartRepository.
type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

var orderOrdering = map[string]string{
	"total": "total",
	"date":  "date",
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.MenuItem.Category")
}

// Create inserts the order row and then its items.
func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	items := o.Items
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return translate(err, "order")
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return translate(err, "order items")
		}
	}
	o.Items = items
	return nil
}

// FindByID loads an order with its items.
func (r *OrderRepository) FindByID(tx *gorm.DB, id uint) (*entity.Order, error) {
	var o entity.Order
	if err := withItems(tx).First(&o, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order %d", id))
	}
	return &o, nil
}

// List returns one page of orders with their items and the total match count.
func (r *OrderRepository) List(tx *gorm.DB, q OrderQuery) ([]entity.Order, int64, error) {
	db := tx.Model(&entity.Order{})
	if q.UserID != nil {
		db = db.Where("user_id = ?", *q.UserID)
	}
	if q.DeliveryCrewID != nil {
		db = db.Where("delivery_crew_id = ?", *q.DeliveryCrewID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.Date != nil {
		db = db.Where("date = ?", *q.Date)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "orders")
	}

	order, err := orderBy(q.Ordering, orderOrdering, "date")
	if err != nil {
		return nil, 0, err
	}

	var orders []entity.Order
	if err := q.Page.apply(withItems(db).Order(order)).Find(&orders).Error; err != nil {
		return nil, 0, translate(err, "orders")
	}
	return orders, total, nil
}

// UpdateFields writes the given columns of one order.
func (r *OrderRepository) UpdateFields(tx *gorm.DB, id uint, fields map[string]any) error {
	res := tx.Model(&entity.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "order")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d", apperr.ErrNotFound, id)
	}
	return nil
}

// Delete removes an order and its items. Run it inside a transaction.
func (r *OrderRepository) Delete(tx *gorm.DB, id uint) error {
	if err := tx.Where("order_id = ?", id).Delete(&entity.OrderItem{}).Error; err != nil {
		return translate(err, "order items")
	}
	res := tx.Delete(&entity.Order{}, id)
	if res.Error != nil {
		return translate(res.Error, "order")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d", apperr.ErrNotFound, id)
	}
	return nil
}
