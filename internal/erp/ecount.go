// Package erp posts settlement slips to the Ecount ERP OAPI
// (매출·매입전표 자동분개, InvoiceAuto/SaveInvoiceAuto).
package erp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/quickoil/kiosk/internal/config"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/order"
	"gorm.io/gorm"
)

// sessionTTL keeps the cached session two minutes short of Ecount's
// twenty-minute expiry.
const sessionTTL = 18 * time.Minute

// Client is an Ecount OAPI client with a process-level session cache.
// Safe for concurrent use.
type Client struct {
	cfg     config.EcountConfig
	http    *http.Client
	baseURL string

	mu         sync.Mutex
	sessionID  string
	loggedInAt time.Time
}

// NewClient builds a client for the configured Ecount zone.
func NewClient(cfg config.EcountConfig) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: fmt.Sprintf("https://oapi%s.ecount.com", cfg.Zone),
	}
}

// NewClientWithBaseURL builds a client against an explicit endpoint.
func NewClientWithBaseURL(cfg config.EcountConfig, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = baseURL
	return c
}

type loginResponse struct {
	Data struct {
		Code  string `json:"Code"`
		Datas struct {
			SessionID string `json:"SESSION_ID"`
			HostURL   string `json:"HOST_URL"`
		} `json:"Datas"`
	} `json:"Data"`
}

type saveResponse struct {
	Status string `json:"Status"`
	Data   struct {
		SuccessCnt    int      `json:"SuccessCnt"`
		SlipNos       []string `json:"SlipNos"`
		ResultDetails []struct {
			TotalError string `json:"TotalError"`
		} `json:"ResultDetails"`
	} `json:"Data"`
}

type invoicePayload struct {
	InvoiceAutoList []invoiceEntry `json:"InvoiceAutoList"`
}

type invoiceEntry struct {
	BulkDatas map[string]string `json:"BulkDatas"`
}

// login authenticates and caches the session. Caller holds c.mu.
func (c *Client) login() (string, error) {
	body := map[string]string{
		"COM_CODE":     c.cfg.ComCode,
		"USER_ID":      c.cfg.UserID,
		"API_CERT_KEY": c.cfg.APIKey,
		"LAN_TYPE":     "ko-KR",
		"ZONE":         c.cfg.Zone,
	}

	var result loginResponse
	if err := c.post(c.baseURL+"/OAPI/V2/OAPILogin", body, &result); err != nil {
		return "", fmt.Errorf("erp: login: %w", err)
	}
	if result.Data.Code != "00" {
		return "", fmt.Errorf("erp: login rejected with code %q", result.Data.Code)
	}

	c.sessionID = result.Data.Datas.SessionID
	c.loggedInAt = time.Now()
	return c.sessionID, nil
}

// session returns the cached session ID, logging in when missing or stale.
func (c *Client) session() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" && time.Since(c.loggedInAt) < sessionTTL {
		return c.sessionID, nil
	}
	return c.login()
}

// invalidateSession drops the cached session so the next call re-logs in.
func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.sessionID = ""
	c.mu.Unlock()
}

func (c *Client) post(url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// saveInvoice posts one slip and returns its slip number. A session-expiry
// response is retried once after a fresh login.
func (c *Client) saveInvoice(bulk map[string]string) (string, error) {
	payload := invoicePayload{InvoiceAutoList: []invoiceEntry{{BulkDatas: bulk}}}

	attempt := func() (*saveResponse, error) {
		sessionID, err := c.session()
		if err != nil {
			return nil, err
		}
		url := fmt.Sprintf("%s/OAPI/V2/InvoiceAuto/SaveInvoiceAuto?SESSION_ID=%s", c.baseURL, sessionID)
		var result saveResponse
		if err := c.post(url, payload, &result); err != nil {
			return nil, fmt.Errorf("erp: save invoice: %w", err)
		}
		return &result, nil
	}

	result, err := attempt()
	if err != nil {
		return "", err
	}
	if result.Data.SuccessCnt == 0 && result.Status == "401" {
		c.invalidateSession()
		if result, err = attempt(); err != nil {
			return "", err
		}
	}

	if result.Data.SuccessCnt > 0 {
		if len(result.Data.SlipNos) > 0 {
			return result.Data.SlipNos[0], nil
		}
		return "", nil
	}

	msg := "unknown error"
	if len(result.Data.ResultDetails) > 0 && result.Data.ResultDetails[0].TotalError != "" {
		msg = result.Data.ResultDetails[0].TotalError
	}
	return "", fmt.Errorf("erp: save invoice rejected: %s", msg)
}

// slipDate is the slip's transaction date, YYYYMMDD local time.
func slipDate(o *models.Order) string {
	at := time.Now()
	if o.CompletedAt != nil {
		at = *o.CompletedAt
	}
	return at.Format("20060102")
}

// CreateSalesSlip posts the completed order as a sales slip (TAX_GUBUN 11).
// The VAT-inclusive total is split into supply amount and VAT.
func (c *Client) CreateSalesSlip(db *gorm.DB, o *models.Order) (string, error) {
	total := order.Total(o)
	supply := int(math.Floor(float64(total) / 1.1))
	vat := total - supply

	return c.saveInvoice(map[string]string{
		"TRX_DATE":   slipDate(o),
		"TAX_GUBUN":  "11",
		"CUST":       c.cfg.Cust,
		"CR_CODE":    c.cfg.CrCode,
		"SUPPLY_AMT": fmt.Sprintf("%d", supply),
		"VAT_AMT":    fmt.Sprintf("%d", vat),
		"ACCT_NO":    c.cfg.AcctNo,
		"REMARKS":    truncateRunes(BuildRemarks(db, o), 200),
		"SITE_CD":    c.cfg.SiteCd,
	})
}

// CreatePurchaseSlip posts the membership discount as a purchase slip
// (TAX_GUBUN 21). The discount is a configured rate of the order total,
// capped at a configured maximum, both VAT inclusive.
func (c *Client) CreatePurchaseSlip(db *gorm.DB, o *models.Order) (string, error) {
	discount := int(math.Floor(float64(order.Total(o)) * c.cfg.MembershipDiscountRate))
	if discount > c.cfg.MembershipDiscountMax {
		discount = c.cfg.MembershipDiscountMax
	}
	supply := int(math.Floor(float64(discount) / 1.1))
	vat := discount - supply

	return c.saveInvoice(map[string]string{
		"TRX_DATE":   slipDate(o),
		"TAX_GUBUN":  "21",
		"CUST":       c.cfg.PurchaseCust,
		"DR_CODE":    c.cfg.PurchaseDrCode,
		"SUPPLY_AMT": fmt.Sprintf("%d", supply),
		"VAT_AMT":    fmt.Sprintf("%d", vat),
		"ACCT_NO":    c.cfg.PurchaseAcctNo,
		"REMARKS":    truncateRunes(BuildRemarks(db, o)+" 멤버쉽할인", 200),
		"SITE_CD":    c.cfg.SiteCd,
	})
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
