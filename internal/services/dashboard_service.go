package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
	"farmconnect/pkg/apperrors"
)

const recentLimit = 5

// FarmerSummary aggregates a farmer's ledger, orders and catalog.
type FarmerSummary struct {
	TotalIncome         decimal.Decimal      `json:"total_income"`
	CompletedSalesCount int                  `json:"completed_sales_count"`
	PendingSalesCount   int                  `json:"pending_sales_count"`
	NumberOfOrders      int                  `json:"number_of_orders"`
	NumberOfNewOrders   int                  `json:"number_of_new_orders"`
	ActiveProductsCount int                  `json:"active_products_count"`
	ReadyToHarvestCount int                  `json:"ready_to_harvest_count"`
	MonthlyIncomeData   []decimal.Decimal    `json:"monthly_income_data"`
	RecentTransactions  []models.LedgerEntry `json:"recent_transactions"`
}

// ConsumerSummary aggregates a consumer's orders.
type ConsumerSummary struct {
	TotalSpent           decimal.Decimal `json:"total_spent"`
	OrdersCount          int             `json:"orders_count"`
	CompletedOrdersCount int             `json:"completed_orders_count"`
	PendingOrdersCount   int             `json:"pending_orders_count"`
	RecentOrders         []models.Order  `json:"recent_orders"`
}

// DashboardService builds the read-only summaries shown to each role.
type DashboardService struct {
	orders   repositories.OrderRepository
	ledger   repositories.LedgerRepository
	listings repositories.ListingRepository
	now      func() time.Time
}

func NewDashboardService(
	orders repositories.OrderRepository,
	ledger repositories.LedgerRepository,
	listings repositories.ListingRepository,
) *DashboardService {
	return &DashboardService{orders: orders, ledger: ledger, listings: listings, now: time.Now}
}

func (s *DashboardService) FarmerSummary(ctx context.Context, actor identity.Actor) (*FarmerSummary, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "load ledger for summary")
	}
	orders, err := s.orders.ListBySeller(ctx, farmer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "load orders for summary")
	}
	listings, err := s.listings.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "load listings for summary")
	}
	summary := summarizeFarmer(entries, orders, listings, s.now())
	return &summary, nil
}

func (s *DashboardService) ConsumerSummary(ctx context.Context, actor identity.Actor) (*ConsumerSummary, error) {
	consumer, err := identity.RequireConsumer(actor)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByBuyer(ctx, consumer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "load orders for summary")
	}
	summary := summarizeConsumer(orders)
	return &summary, nil
}

// summarizeFarmer buckets income by calendar month regardless of year.
func summarizeFarmer(entries []models.LedgerEntry, orders []models.Order, listings []models.Listing, now time.Time) FarmerSummary {
	s := FarmerSummary{
		TotalIncome:        decimal.Zero,
		MonthlyIncomeData:  make([]decimal.Decimal, 12),
		RecentTransactions: []models.LedgerEntry{},
	}
	for i := range s.MonthlyIncomeData {
		s.MonthlyIncomeData[i] = decimal.Zero
	}

	for _, e := range entries {
		switch e.Status {
		case models.LedgerCompleted:
			s.CompletedSalesCount++
			s.TotalIncome = s.TotalIncome.Add(e.TotalAmount)
			m := int(e.Date.Month()) - 1
			s.MonthlyIncomeData[m] = s.MonthlyIncomeData[m].Add(e.TotalAmount)
		case models.LedgerPending:
			s.PendingSalesCount++
		}
	}

	s.NumberOfOrders = len(orders)
	for _, o := range orders {
		if o.Status == models.OrderRequested {
			s.NumberOfNewOrders++
		}
	}

	for _, l := range listings {
		if l.Status != models.ListingAvailable {
			continue
		}
		s.ActiveProductsCount++
		if !l.HarvestDate.After(now) {
			s.ReadyToHarvestCount++
		}
	}

	if len(entries) > recentLimit {
		entries = entries[:recentLimit]
	}
	s.RecentTransactions = append(s.RecentTransactions, entries...)
	return s
}

func summarizeConsumer(orders []models.Order) ConsumerSummary {
	s := ConsumerSummary{
		TotalSpent:   decimal.Zero,
		OrdersCount:  len(orders),
		RecentOrders: []models.Order{},
	}
	for _, o := range orders {
		switch {
		case o.Status == models.OrderCompleted:
			s.CompletedOrdersCount++
			s.TotalSpent = s.TotalSpent.Add(o.TotalAmount)
		case o.Status.IsPending():
			s.PendingOrdersCount++
		}
	}
	if len(orders) > recentLimit {
		orders = orders[:recentLimit]
	}
	s.RecentOrders = append(s.RecentOrders, orders...)
	return s
}
