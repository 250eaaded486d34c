package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickoil/kiosk/internal/catalog"
	"github.com/quickoil/kiosk/internal/db"
	"github.com/quickoil/kiosk/internal/messenger"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/order"
	"github.com/quickoil/kiosk/internal/pricing"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	api := router.Group("/api")
	api.GET("/brands", handleBrands(opts.DB))
	api.GET("/fuels", handleFuels(opts.DB))
	api.GET("/menu", handleMenu(opts.DB))
	api.GET("/services", handleServices(opts.DB))
	api.POST("/orders", handleCreateOrder(opts.DB))
	api.GET("/orders", handleListOrders(opts.DB))
	api.GET("/orders/:id", handleGetOrder(opts.DB))
	api.POST("/orders/:id/status", handleUpdateStatus(opts.DB))
	api.POST("/orders/:id/complete", handleCompleteOrder(opts))
	api.GET("/settings", handleGetSettings(opts.DB))
	api.PUT("/settings", handleUpdateSettings(opts.DB))
	registerReservationRoutes(api, opts.DB)
}

type generationJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type modelJSON struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Generations []generationJSON `json:"generations,omitempty"`
}

type brandJSON struct {
	ID     uint        `json:"id"`
	Name   string      `json:"name"`
	Models []modelJSON `json:"models"`
}

func handleBrands(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		brands, err := catalog.BrandsWithModels(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out := make([]brandJSON, 0, len(brands))
		for _, b := range brands {
			bj := brandJSON{ID: b.ID, Name: b.Name, Models: []modelJSON{}}
			for _, m := range b.Models {
				mj := modelJSON{ID: m.ID, Name: m.Name}
				for _, g := range m.Children {
					mj.Generations = append(mj.Generations, generationJSON{ID: g.ID, Name: g.Name})
				}
				bj.Models = append(bj.Models, mj)
			}
			out = append(out, bj)
		}
		c.JSON(http.StatusOK, gin.H{"brands": out})
	}
}

func handleFuels(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuels, err := catalog.FuelTypes(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]gin.H, 0, len(fuels))
		for _, f := range fuels {
			out = append(out, gin.H{"id": f.ID, "name": f.Name})
		}
		c.JSON(http.StatusOK, gin.H{"fuels": out})
	}
}

func handleMenu(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelID, err1 := strconv.ParseUint(c.Query("model"), 10, 32)
		fuelID, err2 := strconv.ParseUint(c.Query("fuel"), 10, 32)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "model and fuel query parameters are required"})
			return
		}

		menu, err := pricing.MenuFor(gdb, uint(modelID), uint(fuelID))
		if err != nil {
			if errors.Is(err, pricing.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		settings, err := db.GetStoreSettings(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tiers":             menu.Tiers,
			"catalogued":        menu.Catalogued,
			"estimated_minutes": settings.EstimatedMinutes,
		})
	}
}

func handleServices(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var services []models.ExtraService
		err := gdb.Where("active = ?", true).Order("sort_order ASC").Find(&services).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]gin.H, 0, len(services))
		for _, s := range services {
			out = append(out, gin.H{
				"id":          s.ID,
				"name":        s.Name,
				"description": s.Description,
				"price":       s.Price,
			})
		}
		c.JSON(http.StatusOK, gin.H{"services": out})
	}
}

type createOrderRequest struct {
	CarNumber       string `json:"car_number"`
	CustomerPhone   string `json:"customer_phone"`
	CarModelID      uint   `json:"car_model_id" binding:"required"`
	FuelTypeID      uint   `json:"fuel_type_id" binding:"required"`
	TierCode        string `json:"tier_code" binding:"required"`
	MileageCurrent  *int   `json:"mileage_current"`
	Notes           string `json:"notes"`
	ExtraServiceIDs []uint `json:"extra_service_ids"`
}

type orderItemJSON struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type orderJSON struct {
	ID             uint            `json:"id"`
	CarNumber      string          `json:"car_number"`
	CustomerPhone  string          `json:"customer_phone"`
	TierCode       string          `json:"tier_code"`
	TierName       string          `json:"tier_name"`
	ProductName    string          `json:"product_name"`
	OilPrice       int             `json:"oil_price"`
	Fallback       bool            `json:"fallback"`
	Items          []orderItemJSON `json:"items"`
	Total          int             `json:"total"`
	Status         string          `json:"status"`
	MileageCurrent *int            `json:"mileage_current,omitempty"`
	MileageNext    *int            `json:"mileage_next,omitempty"`
	ErpSlipNo      string          `json:"erp_slip_no,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

func toOrderJSON(o *models.Order) orderJSON {
	oj := orderJSON{
		ID:             o.ID,
		CarNumber:      o.CarNumber,
		CustomerPhone:  o.CustomerPhone,
		TierCode:       o.TierCode,
		TierName:       o.TierName,
		ProductName:    o.ProductName,
		OilPrice:       o.OilPrice,
		Fallback:       o.Fallback,
		Items:          []orderItemJSON{},
		Total:          order.Total(o),
		Status:         o.Status,
		MileageCurrent: o.MileageCurrent,
		MileageNext:    o.MileageNext,
		ErpSlipNo:      o.ErpSlipNo,
		CreatedAt:      o.CreatedAt,
		CompletedAt:    o.CompletedAt,
	}
	for _, it := range o.Items {
		oj.Items = append(oj.Items, orderItemJSON{Name: it.Name, Price: it.Price})
	}
	return oj
}

func handleCreateOrder(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		o, err := order.Create(gdb, order.CreateInput{
			CarNumber:       req.CarNumber,
			CustomerPhone:   req.CustomerPhone,
			CarModelID:      req.CarModelID,
			FuelTypeID:      req.FuelTypeID,
			TierCode:        req.TierCode,
			MileageCurrent:  req.MileageCurrent,
			Notes:           req.Notes,
			ExtraServiceIDs: req.ExtraServiceIDs,
		})
		if err != nil {
			if errors.Is(err, pricing.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, toOrderJSON(o))
	}
}

func handleListOrders(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := order.List(gdb, order.ListOptions{
			Status:    c.Query("status"),
			CarNumber: c.Query("car_number"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]orderJSON, 0, len(orders))
		for i := range orders {
			out = append(out, toOrderJSON(&orders[i]))
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}

func handleGetOrder(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		o, err := order.Get(gdb, id)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toOrderJSON(o))
	}
}

func handleUpdateStatus(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		o, err := order.UpdateStatus(gdb, id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, order.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case strings.Contains(err.Error(), "invalid status transition"):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, toOrderJSON(o))
	}
}

// handleCompleteOrder finishes an order and fires the follow-up work:
// customer notification and ERP settlement. Both are best effort so a
// gateway outage never blocks the shop floor.
func handleCompleteOrder(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}

		o, err := order.Complete(opts.DB, id)
		if err != nil {
			switch {
			case errors.Is(err, order.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case strings.Contains(err.Error(), "invalid status transition"):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		// Reload with associations for the statement and slip remarks.
		o, err = order.Get(opts.DB, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if opts.Sender != nil {
			settings, serr := db.GetStoreSettings(opts.DB)
			storeName := "QuickOil"
			if serr == nil {
				storeName = settings.StoreName
			}
			if err := messenger.NotifyCompletion(opts.Sender, storeName, o); err != nil {
				log.Printf("order %d: completion notify failed: %v", o.ID, err)
			}
		}

		if opts.ERP != nil {
			slipNo, err := opts.ERP.CreateSalesSlip(opts.DB, o)
			if err != nil {
				log.Printf("order %d: sales slip failed: %v", o.ID, err)
			} else if slipNo != "" {
				o.ErpSlipNo = slipNo
				if err := opts.DB.Model(o).Update("erp_slip_no", slipNo).Error; err != nil {
					log.Printf("order %d: save slip no: %v", o.ID, err)
				}
			}
		}

		c.JSON(http.StatusOK, toOrderJSON(o))
	}
}

type settingsJSON struct {
	StoreName        string `json:"store_name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	WelcomeMessage   string `json:"welcome_message"`
}

func handleGetSettings(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := db.GetStoreSettings(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settingsJSON{
			StoreName:        s.StoreName,
			Phone:            s.Phone,
			Address:          s.Address,
			EstimatedMinutes: s.EstimatedMinutes,
			WelcomeMessage:   s.WelcomeMessage,
		})
	}
}

func handleUpdateSettings(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingsJSON
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s, err := db.GetStoreSettings(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.StoreName = req.StoreName
		s.Phone = req.Phone
		s.Address = req.Address
		s.EstimatedMinutes = req.EstimatedMinutes
		s.WelcomeMessage = req.WelcomeMessage
		if err := db.SaveStoreSettings(gdb, s); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, req)
	}
}
