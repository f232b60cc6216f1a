package api

import (
	"errors"
	"net/http"

	"adminpanel/internal/devserver"
	"adminpanel/internal/dto/req"
	"adminpanel/internal/dto/resp"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admins *devserver.Admins
}

func NewAdminHandler(admins *devserver.Admins) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func (h *AdminHandler) notFoundOr500(c *gin.Context, err error) {
	if errors.Is(err, devserver.ErrNotFound) {
		resp.Fail(c, http.StatusNotFound, "Admin not found")
		return
	}
	resp.Fail(c, http.StatusInternalServerError, "Internal server error")
}

func (h *AdminHandler) List(c *gin.Context) {
	var q req.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	admins, page := h.admins.List(q)
	resp.Status(c, http.StatusOK, "Admins fetched", gin.H{
		"admins":     admins,
		"pagination": page,
	})
}

func (h *AdminHandler) Get(c *gin.Context) {
	a, err := h.admins.Get(c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	resp.Status(c, http.StatusOK, "Admin fetched", a)
}

func (h *AdminHandler) Create(c *gin.Context) {
	var body req.CreateAdminReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.admins.Create(body)
	if err != nil {
		if errors.Is(err, devserver.ErrEmailTaken) {
			resp.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		h.notFoundOr500(c, err)
		return
	}
	resp.Status(c, http.StatusCreated, "Admin created successfully", a)
}

func (h *AdminHandler) Update(c *gin.Context) {
	var body req.UpdateAdminReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.admins.Update(c.Param("id"), body)
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	resp.Status(c, http.StatusOK, "Admin updated successfully", a)
}

func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	a, err := h.admins.ToggleStatus(c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	resp.Status(c, http.StatusOK, "Admin status updated", a)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admins.Delete(c.Param("id")); err != nil {
		h.notFoundOr500(c, err)
		return
	}
	resp.Status(c, http.StatusOK, "Admin deleted successfully", nil)
}
