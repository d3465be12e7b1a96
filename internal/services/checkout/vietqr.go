package checkout

import (
	"fmt"
	"net/url"
)

// Bank is the receiving account shown on bank-transfer QR codes.
type Bank struct {
	Code        string
	AccountNo   string
	AccountName string
}

// QRURL builds a VietQR image link; empty when no bank is configured.
func (b Bank) QRURL(amount int64, info string) string {
	if b.Code == "" || b.AccountNo == "" {
		return ""
	}
	q := url.Values{}
	q.Set("amount", fmt.Sprintf("%d", amount))
	q.Set("addInfo", info)
	if b.AccountName != "" {
		q.Set("accountName", b.AccountName)
	}
	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact2.png?%s",
		url.PathEscape(b.Code), url.PathEscape(b.AccountNo), q.Encode())
}
