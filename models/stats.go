package models

// DashboardStats holds the document counts shown on the admin dashboard
type DashboardStats struct {
	TotalProducts   int64 `json:"totalProducts"`
	TotalOrders     int64 `json:"totalOrders"`
	TotalCategories int64 `json:"totalCategories"`
	TotalUsers      int64 `json:"totalUsers"`
}
