package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/services"
)

// OrderLineRequest is one requested product. A missing quantity counts as one.
type OrderLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1"`
}

// CreateOrderRequest represents the request body for submitting an inquiry
type CreateOrderRequest struct {
	CustomerName string             `json:"customerName" binding:"required"`
	Email        string             `json:"email" binding:"required,email"`
	Phone        string             `json:"phone" binding:"required"`
	Message      string             `json:"message"`
	Products     []OrderLineRequest `json:"products" binding:"omitempty,dive"`
}

// UpdateOrderStatusRequest represents the request body for moving an order along its lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderController serves the inquiry endpoints
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create handles POST /api/orders/create
func (oc *OrderController) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	input := services.InquiryInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		Products:     make([]services.InquiryLine, 0, len(req.Products)),
	}
	for _, line := range req.Products {
		input.Products = append(input.Products, services.InquiryLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := oc.orders.CreateInquiry(c, input)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to submit inquiry")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"message": "Inquiry submitted successfully",
		"orderId": order.ID,
	})
}

// List handles GET /api/orders/get/orders?date=YYYY-MM-DD
func (oc *OrderController) List(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c, c.Query("date"))
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to fetch orders")
		return
	}
	respondSuccess(c, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/orders/admin/:orderId/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := oc.orders.UpdateStatus(c, c.Param("orderId"), req.Status)
	if err != nil {
		respondServiceError(c, err, "DATABASE_ERROR", "Failed to update order status")
		return
	}
	respondSuccess(c, http.StatusOK, order)
}
