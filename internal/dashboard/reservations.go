package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/order"
	"gorm.io/gorm"
)

func registerReservationRoutes(api *gin.RouterGroup, gdb *gorm.DB) {
	api.GET("/customers", handleCustomerLookup(gdb))
	api.GET("/reservations", handleListReservations(gdb))
	api.POST("/reservations", handleCreateReservation(gdb))
	api.POST("/reservations/:id/cancel", handleCancelReservation(gdb))
}

// handleCustomerLookup prefills the kiosk from a returning customer's phone
// number. Unknown numbers are a 404 so the kiosk falls back to manual entry.
func handleCustomerLookup(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Query("phone")
		if phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone query parameter is required"})
			return
		}

		customer, err := order.FindCustomerByPhone(gdb, phone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if customer == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}

		resp := gin.H{
			"phone":      customer.Phone,
			"name":       customer.Name,
			"car_number": customer.CarNumber,
		}
		if customer.BrandID != nil {
			resp["brand_id"] = *customer.BrandID
		}
		if customer.CarModelID != nil {
			resp["car_model_id"] = *customer.CarModelID
		}
		if customer.FuelTypeID != nil {
			resp["fuel_type_id"] = *customer.FuelTypeID
		}
		c.JSON(http.StatusOK, resp)
	}
}

type reservationJSON struct {
	ID            uint   `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CarNumber     string `json:"car_number"`
	ExpectedTier  string `json:"expected_tier,omitempty"`
	Status        string `json:"status"`
	Source        string `json:"source"`
	OrderID       *uint  `json:"order_id,omitempty"`
}

func toReservationJSON(r *models.Reservation) reservationJSON {
	return reservationJSON{
		ID:            r.ID,
		Date:          r.Date.Format("2006-01-02"),
		Time:          r.Time,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CarNumber:     r.CarNumber,
		ExpectedTier:  r.ExpectedTier,
		Status:        r.Status,
		Source:        r.Source,
		OrderID:       r.OrderID,
	}
}

func handleListReservations(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now()
		if d := c.Query("date"); d != "" {
			parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			date = parsed
		}

		reservations, err := order.ReservationsForDate(gdb, date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]reservationJSON, 0, len(reservations))
		for i := range reservations {
			out = append(out, toReservationJSON(&reservations[i]))
		}
		c.JSON(http.StatusOK, gin.H{"reservations": out})
	}
}

type createReservationRequest struct {
	Date             string `json:"date" binding:"required"`
	Time             string `json:"time" binding:"required"`
	CustomerName     string `json:"customer_name"`
	CustomerPhone    string `json:"customer_phone" binding:"required"`
	CarNumber        string `json:"car_number"`
	ExpectedTier     string `json:"expected_tier"`
	ExpectedServices string `json:"expected_services"`
	Source           string `json:"source"`
	Memo             string `json:"memo"`
}

func handleCreateReservation(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		r, err := order.CreateReservation(gdb, order.ReservationInput{
			Date:             date,
			Time:             req.Time,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			CarNumber:        req.CarNumber,
			ExpectedTier:     req.ExpectedTier,
			ExpectedServices: req.ExpectedServices,
			Source:           req.Source,
			Memo:             req.Memo,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, toReservationJSON(r))
	}
}

func handleCancelReservation(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
			return
		}
		if err := order.CancelReservation(gdb, uint(id)); err != nil {
			if errors.Is(err, order.ErrReservationNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	}
}
