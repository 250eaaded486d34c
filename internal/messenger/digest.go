package messenger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quickoil/kiosk/internal/krw"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// DailyReport holds the day's order metrics for the staff digest.
type DailyReport struct {
	Date      time.Time
	Completed int
	Cancelled int
	Pending   int
	Revenue   int
}

// BuildDailyReport computes order metrics for the calendar day containing now.
func BuildDailyReport(db *gorm.DB, now time.Time) (*DailyReport, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	report := &DailyReport{Date: dayStart}

	var completed int64
	if err := db.Model(&models.Order{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", "completed", dayStart, dayEnd).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("messenger: daily report: %w", err)
	}
	report.Completed = int(completed)

	var cancelled int64
	db.Model(&models.Order{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", "cancelled", dayStart, dayEnd).
		Count(&cancelled)
	report.Cancelled = int(cancelled)

	var pending int64
	db.Model(&models.Order{}).
		Where("status IN ?", []string{"pending", "in_progress"}).
		Count(&pending)
	report.Pending = int(pending)

	var orders []models.Order
	if err := db.Preload("Items").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", "completed", dayStart, dayEnd).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("messenger: daily report: %w", err)
	}
	for i := range orders {
		report.Revenue += orders[i].OilPrice
		for _, it := range orders[i].Items {
			report.Revenue += it.Price
		}
	}

	return report, nil
}

// FormatDailyReport renders the staff digest message.
func FormatDailyReport(storeName string, r *DailyReport) string {
	msg := fmt.Sprintf("[%s 일일 마감]\n%s\n\n시공 완료: %d건\n매출: %s원",
		storeName, r.Date.Format("2006.01.02"), r.Completed, krw.Format(r.Revenue))
	if r.Cancelled > 0 {
		msg += fmt.Sprintf("\n취소: %d건", r.Cancelled)
	}
	if r.Pending > 0 {
		msg += fmt.Sprintf("\n미완료: %d건", r.Pending)
	}
	return msg
}

// Digest sends the daily order summary to the staff phone on a cron
// schedule.
type Digest struct {
	db         *gorm.DB
	sender     Sender
	storeName  string
	staffPhone string
	cronExpr   string
}

// NewDigest validates the cron expression and builds the digest scheduler.
func NewDigest(db *gorm.DB, sender Sender, storeName, staffPhone, cronExpr string) (*Digest, error) {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return nil, fmt.Errorf("messenger: digest cron %q: %w", cronExpr, err)
	}
	return &Digest{
		db:         db,
		sender:     sender,
		storeName:  storeName,
		staffPhone: staffPhone,
		cronExpr:   cronExpr,
	}, nil
}

// Run fires the digest at each cron tick until ctx is cancelled. Send
// failures are logged, never fatal.
func (d *Digest) Run(ctx context.Context) {
	for {
		wait := nextCronDuration(d.cronExpr)
		if wait == 0 {
			wait = time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			if err := d.SendNow(); err != nil {
				log.Printf("digest send failed: %v", err)
			}
		}
	}
}

// SendNow builds and sends the digest for today. A day with no completed
// orders still reports, so staff can tell silence from breakage.
func (d *Digest) SendNow() error {
	report, err := BuildDailyReport(d.db, time.Now())
	if err != nil {
		return err
	}
	return d.sender.SendSMS(d.staffPhone, FormatDailyReport(d.storeName, report))
}
