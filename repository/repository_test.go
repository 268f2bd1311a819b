package repository_test

import (
	"context"
	"errors"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/dbtest"
	"littlelemon/pkg/money"
	"littlelemon/policy"
	"littlelemon/repository"
)

func TestCartUpsertSetsQuantity(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCartRepository(db)
	u := dbtest.User(t, db, "alice")
	cat := dbtest.Category(t, db, "mains")
	item := dbtest.MenuItem(t, db, "Pasta", "10.99", cat.ID)

	for _, qty := range []int{2, 5} {
		line := entity.CartLine{
			UserID:     u.ID,
			MenuItemID: item.ID,
			Quantity:   qty,
			UnitPrice:  item.Price,
			Price:      item.Price.Mul(qty),
		}
		if err := repo.Upsert(db, &line); err != nil {
			t.Fatalf("upsert qty %d: %v", qty, err)
		}
		if line.Quantity != qty {
			t.Fatalf("quantity = %d, want %d", line.Quantity, qty)
		}
		if line.MenuItem.Title != "Pasta" {
			t.Fatalf("menu item not loaded: %+v", line.MenuItem)
		}
	}

	lines, err := repo.Lines(db, u.ID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := lines[0].Price.String(); got != "54.95" {
		t.Fatalf("price = %s, want 54.95", got)
	}
}

func TestCartDeleteLinesDetectsStaleSnapshot(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCartRepository(db)
	u := dbtest.User(t, db, "bob")
	cat := dbtest.Category(t, db, "mains")
	a := dbtest.MenuItem(t, db, "A", "1.00", cat.ID)
	b := dbtest.MenuItem(t, db, "B", "2.00", cat.ID)

	var ids []uint
	for _, m := range []entity.MenuItem{a, b} {
		line := entity.CartLine{UserID: u.ID, MenuItemID: m.ID, Quantity: 1, UnitPrice: m.Price, Price: m.Price}
		if err := repo.Upsert(db, &line); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ids = append(ids, line.ID)
	}

	// someone else already removed one line
	if err := db.Delete(&entity.CartLine{}, ids[0]).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	err := repo.DeleteLines(db, u.ID, ids)
	if !errors.Is(err, apperr.ErrConflictRetry) {
		t.Fatalf("err = %v, want ErrConflictRetry", err)
	}
}

func TestCartDeleteLinesIgnoresOtherUsers(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewCartRepository(db)
	owner := dbtest.User(t, db, "owner")
	other := dbtest.User(t, db, "other")
	cat := dbtest.Category(t, db, "mains")
	m := dbtest.MenuItem(t, db, "A", "1.00", cat.ID)

	line := entity.CartLine{UserID: owner.ID, MenuItemID: m.ID, Quantity: 1, UnitPrice: m.Price, Price: m.Price}
	if err := repo.Upsert(db, &line); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := repo.DeleteLines(db, other.ID, []uint{line.ID}); !errors.Is(err, apperr.ErrConflictRetry) {
		t.Fatalf("err = %v, want ErrConflictRetry", err)
	}
	n, err := repo.Clear(db, owner.ID)
	if err != nil || n != 1 {
		t.Fatalf("clear = %d, %v; want 1, nil", n, err)
	}
}

func TestMenuDeleteBlockedWhileInCart(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	menu := repository.NewMenuRepository(db)
	carts := repository.NewCartRepository(db)
	u := dbtest.User(t, db, "carol")
	cat := dbtest.Category(t, db, "drinks")
	m := dbtest.MenuItem(t, db, "Lemonade", "3.50", cat.ID)

	line := entity.CartLine{UserID: u.ID, MenuItemID: m.ID, Quantity: 1, UnitPrice: m.Price, Price: m.Price}
	if err := carts.Upsert(db, &line); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := menu.Delete(ctx, m.ID); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("delete referenced item: %v, want ErrConstraintViolation", err)
	}
	if _, err := carts.Clear(db, u.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := menu.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := menu.Delete(ctx, m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v, want ErrNotFound", err)
	}
}

func TestMenuCreateRequiresCategory(t *testing.T) {
	db := dbtest.New(t)
	menu := repository.NewMenuRepository(db)

	item := entity.MenuItem{Title: "Ghost", Price: money.MustParse("1.00"), CategoryID: 999}
	err := menu.Create(context.Background(), &item)
	if !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}
}

func TestMenuListFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	menu := repository.NewMenuRepository(db)
	mains := dbtest.Category(t, db, "mains")
	drinks := dbtest.Category(t, db, "drinks")
	dbtest.MenuItem(t, db, "Lamb", "20.00", mains.ID)
	dbtest.MenuItem(t, db, "Greek salad", "12.50", mains.ID)
	dbtest.MenuItem(t, db, "Lemonade", "3.50", drinks.ID)

	items, total, err := menu.List(ctx, repository.MenuQuery{Ordering: []string{"-price"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || items[0].Title != "Lamb" || items[2].Title != "Lemonade" {
		t.Fatalf("got total %d, items %v", total, titles(items))
	}

	items, total, err = menu.List(ctx, repository.MenuQuery{CategoryID: &mains.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if total != 2 || items[0].Title != "Greek salad" {
		t.Fatalf("got total %d, items %v", total, titles(items))
	}
	if items[0].Category.Slug != "mains" {
		t.Fatalf("category not preloaded: %+v", items[0].Category)
	}

	items, _, err = menu.List(ctx, repository.MenuQuery{Search: "LEMON"})
	if err != nil || len(items) != 1 {
		t.Fatalf("search: %v %v", err, titles(items))
	}

	items, total, err = menu.List(ctx, repository.MenuQuery{Page: repository.Page{Page: 2, PerPage: 2}})
	if err != nil || total != 3 || len(items) != 1 {
		t.Fatalf("page 2: total %d items %v err %v", total, titles(items), err)
	}

	if _, _, err := menu.List(ctx, repository.MenuQuery{Ordering: []string{"secret"}}); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("bad ordering: %v", err)
	}
}

func TestCategoryDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	cats := repository.NewCategoryRepository(db)
	cat := dbtest.Category(t, db, "desserts")
	dbtest.MenuItem(t, db, "Cake", "6.00", cat.ID)

	if err := cats.Delete(ctx, cat.ID); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}

	dup := entity.Category{Slug: "desserts", Title: "Again"}
	if err := cats.Create(ctx, &dup); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("duplicate slug: %v, want ErrConstraintViolation", err)
	}
}

func TestOrderListScopesAndFilters(t *testing.T) {
	db := dbtest.New(t)
	orders := repository.NewOrderRepository(db)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	crew := dbtest.User(t, db, "dan", policy.GroupDeliveryCrew)
	cat := dbtest.Category(t, db, "mains")
	m := dbtest.MenuItem(t, db, "Pasta", "10.00", cat.ID)

	day1, _ := entity.ParseDate("2026-01-01")
	day2, _ := entity.ParseDate("2026-01-02")
	mk := func(user uint, total string, date entity.Date, delivered bool, crewID *uint) entity.Order {
		o := entity.Order{
			UserID:         user,
			DeliveryCrewID: crewID,
			Status:         delivered,
			Total:          money.MustParse(total),
			Date:           date,
			Items: []entity.OrderItem{{
				MenuItemID: m.ID, Quantity: 1, UnitPrice: m.Price, Price: money.MustParse(total),
			}},
		}
		if err := orders.Create(db, &o); err != nil {
			t.Fatalf("create order: %v", err)
		}
		return o
	}
	mk(alice.ID, "30.00", day2, false, &crew.ID)
	first := mk(alice.ID, "10.00", day1, true, nil)
	mk(bob.ID, "20.00", day1, false, &crew.ID)

	all, total, err := orders.List(db, repository.OrderQuery{})
	if err != nil || total != 3 {
		t.Fatalf("all: %d %v", total, err)
	}
	if all[0].ID != first.ID {
		t.Fatalf("default ordering starts with %d, want %d", all[0].ID, first.ID)
	}
	if len(all[0].Items) != 1 || all[0].Items[0].MenuItem.Title != "Pasta" {
		t.Fatalf("items not loaded: %+v", all[0].Items)
	}

	_, total, _ = orders.List(db, repository.OrderQuery{UserID: &alice.ID})
	if total != 2 {
		t.Fatalf("alice has %d orders, want 2", total)
	}
	_, total, _ = orders.List(db, repository.OrderQuery{DeliveryCrewID: &crew.ID})
	if total != 2 {
		t.Fatalf("crew has %d orders, want 2", total)
	}

	delivered := true
	_, total, _ = orders.List(db, repository.OrderQuery{Status: &delivered})
	if total != 1 {
		t.Fatalf("delivered = %d, want 1", total)
	}
	_, total, _ = orders.List(db, repository.OrderQuery{Date: &day1})
	if total != 2 {
		t.Fatalf("day1 = %d, want 2", total)
	}

	byTotal, _, err := orders.List(db, repository.OrderQuery{Ordering: []string{"-total"}})
	if err != nil {
		t.Fatalf("ordering: %v", err)
	}
	if byTotal[0].Total.String() != "30.00" || byTotal[2].Total.String() != "10.00" {
		t.Fatalf("-total ordering wrong: %s, %s", byTotal[0].Total, byTotal[2].Total)
	}
}

func TestOrderDeleteRemovesItems(t *testing.T) {
	db := dbtest.New(t)
	orders := repository.NewOrderRepository(db)
	u := dbtest.User(t, db, "erin")
	cat := dbtest.Category(t, db, "mains")
	m := dbtest.MenuItem(t, db, "Pasta", "10.00", cat.ID)

	o := entity.Order{
		UserID: u.ID, Total: m.Price, Date: entity.Today(),
		Items: []entity.OrderItem{{MenuItemID: m.ID, Quantity: 1, UnitPrice: m.Price, Price: m.Price}},
	}
	if err := orders.Create(db, &o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := orders.Delete(db, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int64
	db.Model(&entity.OrderItem{}).Where("order_id = ?", o.ID).Count(&n)
	if n != 0 {
		t.Fatalf("%d order items left", n)
	}
	if _, err := orders.FindByID(db, o.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("find deleted: %v", err)
	}
}

func TestGroupMembership(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	u := dbtest.User(t, db, "frank")

	for i := 0; i < 2; i++ {
		if err := users.AddToGroup(ctx, u.ID, policy.GroupManager); err != nil {
			t.Fatalf("add #%d: %v", i, err)
		}
	}
	members, err := users.ListByGroup(ctx, policy.GroupManager)
	if err != nil || len(members) != 1 || members[0].Username != "frank" {
		t.Fatalf("members = %v, %v", members, err)
	}
	in, err := users.IsInGroup(db, u.ID, policy.GroupManager)
	if err != nil || !in {
		t.Fatalf("IsInGroup = %v, %v", in, err)
	}

	if err := users.RemoveFromGroup(ctx, u.ID, policy.GroupManager); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := users.RemoveFromGroup(ctx, u.ID, policy.GroupManager); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("remove again: %v, want ErrNotFound", err)
	}
	if err := users.AddToGroup(ctx, 4242, policy.GroupManager); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("add unknown user: %v, want ErrNotFound", err)
	}
}

func titles(items []entity.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
