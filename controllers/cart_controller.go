package controllers

import (
	"restaurant/middlewares"
	"restaurant/pkg/resp"
	"restaurant/services"

	"github.com/gin-gonic/gin"
)

type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

type addToCartRequest struct {
	MenuItemID uint `form:"menu_item_id" json:"menuItemId"`
	Quantity   *int `form:"quantity" json:"quantity"`
}

type updateQtyRequest struct {
	Quantity *int `form:"quantity" json:"quantity"`
	Version  uint `form:"version" json:"version"`
}

// GET /cart
func (h *CartController) Get(c *gin.Context) {
	uid := middlewares.CurrentPrincipal(c).UserID()
	cart, err := h.Svc.Get(uid)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// POST /cart/add
func (h *CartController) Add(c *gin.Context) {
	uid := middlewares.CurrentPrincipal(c).UserID()

	var req addToCartRequest
	if err := c.ShouldBind(&req); err != nil || req.MenuItemID == 0 {
		resp.BadRequest(c, "menu_item_id is required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if err := h.Svc.Add(uid, req.MenuItemID, qty); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/cart")
}

// POST /cart/update/:id
func (h *CartController) UpdateQty(c *gin.Context) {
	uid := middlewares.CurrentPrincipal(c).UserID()
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateQtyRequest
	if err := c.ShouldBind(&req); err != nil || req.Quantity == nil {
		resp.BadRequest(c, "quantity is required")
		return
	}
	if err := h.Svc.UpdateQty(uid, id, *req.Quantity, req.Version); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/cart")
}

// POST /cart/remove/:id
func (h *CartController) RemoveItem(c *gin.Context) {
	uid := middlewares.CurrentPrincipal(c).UserID()
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.RemoveItem(uid, id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/cart")
}

// POST /cart/clear
func (h *CartController) Clear(c *gin.Context) {
	uid := middlewares.CurrentPrincipal(c).UserID()
	if err := h.Svc.Clear(uid); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/cart")
}
