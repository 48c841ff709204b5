package controllers

import (
	"errors"
	"strconv"

	"restaurant/pkg/apperr"
	"restaurant/pkg/resp"
	"restaurant/repository"
	"restaurant/services"
	"restaurant/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Menu      *services.MenuService
	Users     *repository.UserRepository
	UploadDir string
}

func NewAdminController(menu *services.MenuService, users *repository.UserRepository, uploadDir string) *AdminController {
	return &AdminController{Menu: menu, Users: users, UploadDir: uploadDir}
}

// GET /admin
func (ac *AdminController) Dashboard(c *gin.Context) {
	items, err := ac.Menu.List()
	if err != nil {
		resp.Error(c, err)
		return
	}
	totalUsers, err := ac.Users.Count()
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{
		"menuItems":      items,
		"totalMenuItems": len(items),
		"totalUsers":     totalUsers,
	})
}

// GET /admin/add_menu_item
func (ac *AdminController) AddMenuItemPage(c *gin.Context) {
	resp.OK(c, gin.H{"form": "add_menu_item"})
}

// POST /admin/add_menu_item
func (ac *AdminController) AddMenuItem(c *gin.Context) {
	var in services.MenuItemInput
	if err := c.ShouldBind(&in); err != nil {
		resp.BadRequest(c, "invalid form")
		return
	}
	img, ok := ac.uploadedImage(c)
	if !ok {
		return
	}
	if img != "" {
		in.ImageURL = img
	}

	if _, err := ac.Menu.Create(in); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/admin")
}

// GET /admin/edit_menu_item/:id
func (ac *AdminController) EditMenuItemPage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := ac.Menu.Get(id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"item": item})
}

// POST /admin/edit_menu_item/:id
func (ac *AdminController) EditMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch services.MenuItemPatch
	if err := c.ShouldBind(&patch); err != nil {
		resp.BadRequest(c, "invalid form")
		return
	}
	img, ok := ac.uploadedImage(c)
	if !ok {
		return
	}
	if img != "" {
		patch.ImageURL = &img
	}

	if _, err := ac.Menu.Update(id, patch); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/admin")
}

// POST /admin/delete_menu_item/:id
func (ac *AdminController) DeleteMenuItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ac.Menu.Delete(id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/admin")
}

// uploadedImage saves the optional multipart "image" file. ok is false when
// a response has already been written.
func (ac *AdminController) uploadedImage(c *gin.Context) (string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		// no file (or not multipart); fall back to image_url
		return "", true
	}
	path, err := utils.SaveImage(c, fh, ac.UploadDir)
	if errors.Is(err, utils.ErrBadImage) {
		resp.Error(c, apperr.Validation(err.Error()))
		return "", false
	}
	if err != nil {
		resp.ServerError(c, err)
		return "", false
	}
	return path, true
}

// pathID parses :id; anything that is not a positive integer is a 404 like
// an unknown id.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		resp.NotFound(c, "not found")
		return 0, false
	}
	return uint(id), true
}
