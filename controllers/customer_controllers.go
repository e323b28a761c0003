package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/models"
	"github.com/alanaraujo-bit/Absolut-Poker-club-sub000/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := cc.DB.Order("name asc").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de clientes", customers)
}

// CreateCustomer
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		Name:   req.Name,
		Phone:  req.Phone,
		Active: true,
	}
	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Cliente cadastrado: %s (#%d)", customer.Name, customer.ID)
	utils.RespondJSON(c, http.StatusCreated, "Cliente cadastrado", customer)
}

// GetCustomerByID -> cadastro + comandas do cliente.
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var tabs []models.Tab
	if err := cc.DB.Where("customer_id = ?", id).Order("opened_at desc").Find(&tabs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Detalhe do cliente", gin.H{
		"customer": customer,
		"tabs":     tabs,
	})
}

// UpdateCustomer
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Active *bool   `json:"active"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Active != nil {
		customer.Active = *req.Active
	}

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cliente atualizado", customer)
}

// DeleteCustomer -> não permitido com comanda aberta.
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer_id")
	if !ok {
		return
	}

	var openTabs int64
	if err := cc.DB.Model(&models.Tab{}).
		Where("customer_id = ? AND status = ?", id, models.TabStatusOpen).
		Count(&openTabs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if openTabs > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("cliente possui comanda aberta"))
		return
	}

	if err := cc.DB.Delete(&models.Customer{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cliente excluído", gin.H{"customer_id": id})
}
