package opendart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDisclosures_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, listPath, r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		require.Equal(t, "20250711", r.URL.Query().Get("bgn_de"))
		require.Equal(t, "20250714", r.URL.Query().Get("end_de"))

		w.Write([]byte(`{
			"status": "000", "message": "정상",
			"page_no": 1, "total_count": 1, "total_page": 1,
			"list": [{
				"corp_code": "00126380", "corp_name": "삼성전자",
				"stock_code": "005930",
				"report_nm": "단일판매ㆍ공급계약체결",
				"rcept_no": "20250714000123",
				"flr_nm": "삼성전자", "rcept_dt": "20250714"
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	disclosures, err := client.ListDisclosures(context.Background(), "20250711", "20250714", 3)

	require.NoError(t, err)
	require.Len(t, disclosures, 1)
	assert.Equal(t, "005930", disclosures[0].StockCode)
	assert.Equal(t, "단일판매ㆍ공급계약체결", disclosures[0].ReportName)
}

func TestListDisclosures_PagesUpToCap(t *testing.T) {
	var pagesServed []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page_no")
		pagesServed = append(pagesServed, page)
		fmt.Fprintf(w, `{
			"status": "000", "total_count": 500, "total_page": 5,
			"list": [{"corp_name": "회사%s", "rcept_no": "%s"}]
		}`, page, page)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	disclosures, err := client.ListDisclosures(context.Background(), "20250711", "20250714", 2)

	require.NoError(t, err)
	assert.Len(t, disclosures, 2, "paging stops at maxPages even with more pages available")
	assert.Equal(t, []string{"1", "2"}, pagesServed)
}

func TestListDisclosures_NoDataIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "013", "message": "조회된 데이타가 없습니다."}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	disclosures, err := client.ListDisclosures(context.Background(), "20250712", "20250713", 3)

	require.NoError(t, err)
	assert.Empty(t, disclosures)
}

func TestListDisclosures_InBandErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "020", "message": "요청 제한을 초과하였습니다."}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.ListDisclosures(context.Background(), "20250711", "20250714", 3)

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "020", apiErr.Status)
}

func TestListDisclosures_MidPageFailureReturnsPartial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_no") != "1" {
			http.Error(w, "gone away", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{
			"status": "000", "total_count": 300, "total_page": 3,
			"list": [{"corp_name": "첫페이지", "rcept_no": "1"}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	disclosures, err := client.ListDisclosures(context.Background(), "20250711", "20250714", 3)

	require.NoError(t, err)
	require.Len(t, disclosures, 1)
	assert.Equal(t, "첫페이지", disclosures[0].CorpName)
}

func TestViewerURL(t *testing.T) {
	assert.Equal(t,
		"https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20250714000123",
		ViewerURL("20250714000123"))
	assert.Empty(t, ViewerURL(""))
}
