package controllers

import (
	"restaurant/pkg/resp"
	"restaurant/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Svc *services.MenuService
}

func NewMenuController(svc *services.MenuService) *MenuController {
	return &MenuController{Svc: svc}
}

// GET /home
func (ctl *MenuController) Home(c *gin.Context) {
	items, err := ctl.Svc.List()
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"menuItems": items})
}
