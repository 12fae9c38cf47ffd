package opendart

import "fmt"

// APIError represents an in-band or transport error from OpenDART.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("DART API error: %s (status: %s)", e.Message, e.Status)
}

// Disclosure is one raw filing row from the list endpoint.
type Disclosure struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	StockCode   string `json:"stock_code"`
	ReportName  string `json:"report_nm"`
	ReceiptNo   string `json:"rcept_no"`
	FilerName   string `json:"flr_nm"`
	ReceiptDate string `json:"rcept_dt"`
	Remark      string `json:"rm"`
}

type listResponse struct {
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	PageNo     int          `json:"page_no"`
	PageCount  int          `json:"page_count"`
	TotalCount int          `json:"total_count"`
	TotalPage  int          `json:"total_page"`
	List       []Disclosure `json:"list"`
}

// ViewerURL returns the public DART viewer link for a receipt number.
func ViewerURL(receiptNo string) string {
	if receiptNo == "" {
		return ""
	}
	return "https://dart.fss.or.kr/dsaf001/main.do?rcpNo=" + receiptNo
}
