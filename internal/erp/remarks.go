package erp

import (
	"strconv"
	"strings"
	"time"

	"github.com/quickoil/kiosk/internal/krw"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/order"
	"gorm.io/gorm"
)

// BuildRemarks renders the slip's remarks line in the shop's long-standing
// hand-written ledger format:
//
//	순번. 시간 차종 차번 전화 오일 금액 추가서비스 주행거리
//	예: 3. 12:50 싼타페 DM 13나0845 010-3314-2214 메0w30es 161,384 디톡스 45,000km
//
// Missing fields render as "-" so the column positions stay stable.
func BuildRemarks(db *gorm.DB, o *models.Order) string {
	parts := make([]string, 0, 9)

	completed := o.CreatedAt
	if o.CompletedAt != nil {
		completed = *o.CompletedAt
	}

	// 순번: today's completed orders finished before this one, plus one.
	dayStart := time.Date(completed.Year(), completed.Month(), completed.Day(), 0, 0, 0, 0, completed.Location())
	var before int64
	err := db.Model(&models.Order{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", "completed", dayStart, completed).
		Count(&before).Error
	if err != nil {
		parts = append(parts, "-.")
	} else {
		parts = append(parts, strconv.FormatInt(before+1, 10)+".")
	}

	parts = append(parts, completed.Format("15:04"))
	parts = append(parts, vehicleName(db, o))
	parts = append(parts, orDash(o.CarNumber))
	parts = append(parts, orDash(o.CustomerPhone))
	parts = append(parts, orDash(o.ProductName))
	parts = append(parts, krw.Format(order.Total(o)))

	if len(o.Items) > 0 {
		names := make([]string, len(o.Items))
		for i, it := range o.Items {
			names[i] = it.Name
		}
		parts = append(parts, strings.Join(names, " "))
	} else {
		parts = append(parts, "-")
	}

	if o.MileageCurrent != nil {
		parts = append(parts, krw.Format(*o.MileageCurrent)+"km")
	} else {
		parts = append(parts, "-km")
	}

	return strings.Join(parts, " ")
}

// vehicleName renders the order's vehicle as "부모 세대" for generation
// nodes, the plain model name otherwise.
func vehicleName(db *gorm.DB, o *models.Order) string {
	if o.CarModelID == nil {
		return "-"
	}
	var m models.CarModel
	if err := db.Preload("Parent").Where("id = ?", *o.CarModelID).First(&m).Error; err != nil {
		return "-"
	}
	return m.FullName()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
