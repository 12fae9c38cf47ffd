package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/common"
	"github.com/thebeat-kr/thebeat/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	news := []models.NewsItem{
		{
			Title:       "[단독] 삼성전자 대규모 공급계약",
			Link:        "https://n.news.naver.com/1",
			Description: "반도체 공급계약 체결",
			PublishedAt: time.Date(2025, 7, 14, 7, 30, 0, 0, common.KST()),
			Keyword:     "단독",
			Securities: []models.Security{
				{Name: "삼성전자", Ticker: "005930", Market: models.MarketKOSPI},
			},
		},
	}
	disclosures := []models.Disclosure{
		{
			CorpName:   "에코프로",
			ReportName: "유상증자결정",
			ReceiptNo:  "20250714000123",
			Keyword:    "유상증자",
			ViewerURL:  "https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20250714000123",
			Security:   models.Security{Name: "에코프로", Ticker: "086520", Market: models.MarketKOSDAQ},
		},
	}

	prompt := BuildPrompt(news, disclosures)

	assert.Contains(t, prompt, "### 1. News ###")
	assert.Contains(t, prompt, "### 2. Filings ###")
	assert.Contains(t, prompt, "[단독] 삼성전자 대규모 공급계약")
	assert.Contains(t, prompt, "https://n.news.naver.com/1")
	assert.Contains(t, prompt, "유상증자결정")
	assert.Contains(t, prompt, "rcpNo=20250714000123")
}

func TestBuildPrompt_EmptySections(t *testing.T) {
	prompt := BuildPrompt(nil, nil)

	assert.Contains(t, prompt, "(no news items)")
	assert.Contains(t, prompt, "(no filings)")
}

func TestParseResponse(t *testing.T) {
	raw := `{
		"analysis_list": [
			{"stock": "삼성전자", "grade": "S", "sector": "반도체",
			 "point": "단독 공급계약, 시초가 공략",
			 "reason": "단독 보도 + 공급계약 체결",
			 "reference_url": "https://n.news.naver.com/1"},
			{"stock": "에코프로", "grade": "B", "sector": "2차전지",
			 "point": "단발성 재료", "reason": "재탕 기사"}
		]
	}`

	results, err := ParseResponse(raw)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.GradeS, results[0].Grade)
	assert.Equal(t, "삼성전자", results[0].Stock)
	assert.Equal(t, models.GradeB, results[1].Grade)
}

func TestParseResponse_CodeFenced(t *testing.T) {
	raw := "```json\n{\"analysis_list\": [{\"stock\": \"현대차\", \"grade\": \"A\"}]}\n```"

	results, err := ParseResponse(raw)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GradeA, results[0].Grade)
}

func TestParseResponse_UnknownGradeDefaultsToC(t *testing.T) {
	results, err := ParseResponse(`{"analysis_list": [{"stock": "현대차", "grade": "F"}]}`)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GradeC, results[0].Grade)
}

func TestParseResponse_SkipsEntriesWithoutStock(t *testing.T) {
	results, err := ParseResponse(`{"analysis_list": [
		{"stock": "", "grade": "S"},
		{"stock": "현대차", "grade": "B"}
	]}`)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "현대차", results[0].Stock)
}

func TestParseResponse_NotJSON(t *testing.T) {
	_, err := ParseResponse("오늘은 분석할 내용이 없습니다.")
	assert.Error(t, err)
}

func TestSortByGrade(t *testing.T) {
	results := []models.StockAnalysis{
		{Stock: "c-first", Grade: models.GradeC},
		{Stock: "a-1", Grade: models.GradeA},
		{Stock: "s-1", Grade: models.GradeS},
		{Stock: "a-2", Grade: models.GradeA},
		{Stock: "b-1", Grade: models.GradeB},
	}

	SortByGrade(results)

	grades := make([]models.Grade, len(results))
	for i, r := range results {
		grades[i] = r.Grade
	}
	assert.Equal(t, []models.Grade{models.GradeS, models.GradeA, models.GradeA, models.GradeB, models.GradeC}, grades)
	// Stable within a grade.
	assert.Equal(t, "a-1", results[1].Stock)
	assert.Equal(t, "a-2", results[2].Stock)
}

func TestNewAnalyzer_RequiresAPIKey(t *testing.T) {
	_, err := NewAnalyzer(&common.ClaudeConfig{Timeout: "60s"}, arbor.NewLogger())
	assert.Error(t, err)
}

func TestNewAnalyzer_RejectsBadTimeout(t *testing.T) {
	_, err := NewAnalyzer(&common.ClaudeConfig{APIKey: "k", Timeout: "soon"}, arbor.NewLogger())
	assert.Error(t, err)
}
