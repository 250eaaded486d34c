package messenger

import (
	"fmt"
	"strings"

	"github.com/quickoil/kiosk/internal/krw"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/order"
)

// CompletionMessage renders the 정비 명세서 statement sent to the customer
// when their service is completed. The order must carry its Brand, CarModel
// and Items associations.
func CompletionMessage(storeName string, o *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[ %s 정비 명세서 ]\n\n", storeName)
	fmt.Fprintf(&b, "차량번호: %s\n", orDash(o.CarNumber))
	fmt.Fprintf(&b, "차종: %s\n", vehicleLine(o))
	completedAt := "-"
	if o.CompletedAt != nil {
		completedAt = o.CompletedAt.Format("2006.01.02")
	}
	fmt.Fprintf(&b, "시공일: %s\n\n", completedAt)

	b.WriteString("────────────\n")
	fmt.Fprintf(&b, "%s (%s): %s원", o.TierName, o.ProductName, krw.Format(o.OilPrice))
	for _, it := range o.Items {
		price := "무료"
		if it.Price > 0 {
			price = krw.Format(it.Price) + "원"
		}
		fmt.Fprintf(&b, "\n%s: %s", it.Name, price)
	}
	b.WriteString("\n────────────\n")
	fmt.Fprintf(&b, "총 금액: %s원", krw.Format(order.Total(o)))

	if o.MileageCurrent != nil {
		fmt.Fprintf(&b, "\n\n현재 주행거리: %skm", krw.Format(*o.MileageCurrent))
		if o.MileageNext != nil {
			fmt.Fprintf(&b, "\n다음 교체: %skm", krw.Format(*o.MileageNext))
		}
	}

	if o.Notes != "" {
		fmt.Fprintf(&b, "\n\n※ %s", o.Notes)
	}

	fmt.Fprintf(&b, "\n\n감사합니다 - %s", storeName)
	return b.String()
}

// NotifyCompletion sends the completion statement to the customer: alimtalk
// first, short SMS when alimtalk fails. No-op when the order has no phone.
func NotifyCompletion(s Sender, storeName string, o *models.Order) error {
	if o.CustomerPhone == "" {
		return nil
	}

	if err := s.SendAlimtalk(o.CustomerPhone, CompletionMessage(storeName, o)); err != nil {
		// SMS carries a 90-byte limit; send the short form.
		short := fmt.Sprintf("[%s] 시공완료. %s. 총액:%s원. 감사합니다.",
			storeName, o.CarNumber, krw.Format(order.Total(o)))
		if smsErr := s.SendSMS(o.CustomerPhone, short); smsErr != nil {
			return fmt.Errorf("messenger: completion notify: alimtalk: %v; sms: %w", err, smsErr)
		}
	}
	return nil
}

func vehicleLine(o *models.Order) string {
	if o.CarModel == nil {
		return "-"
	}
	name := o.CarModel.FullName()
	if o.Brand != nil {
		return o.Brand.Name + " " + name
	}
	return name
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
