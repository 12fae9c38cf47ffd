package analysis

import (
	"fmt"
	"strings"

	"github.com/thebeat-kr/thebeat/internal/models"
)

// systemPrompt encodes the grading rubric for the pre-open briefing. The
// model plays a veteran Korean day trader; grade inflation destroys the
// downstream bot's credibility, so S/A require explicit keyword evidence.
const systemPrompt = `You are a professional Korean equity day trader with 15 years of
experience reading disclosures. Analyze the supplied news and filings and
write the pre-open briefing. Watch for the patterns specific to the Korean
market: accumulation by major players, exhausted catalysts, and recycled
news.

[Grade criteria]
- S (exceptional): only for market-moving material containing these signals:
  * exclusive scoop ('단독', unreported elsewhere)
  * world-first technology development or commercialization
  * supply contract ('공급계약 체결') worth 50%+ of prior-year revenue
  * direct contract or partnership with Samsung Electronics, LG, Hyundai
    Motor, Apple, or NVIDIA
  * third-party placement to a conglomerate, or stake sale (M&A)
  * 90%+ odds of closing limit-up
- A (strong): featured-stock coverage ('특징주' named by an outlet or
  broker), near-limit-up momentum, government policy announcement, earnings
  surprise 20%+ above consensus, supply contract worth 30%+ of prior-year
  revenue. Opening gap of 15-20% plausible.
- B (one-off): plain MOU, routine state-project selection, rumor-grade
  featured-stock piece, re-surfaced old material. Likely fades after the
  opening gap.
- C (weak): in-line earnings, plain IR, filings already priced in after
  the prior close.

[Process] Follow this order:
1. Re-check: is this item genuinely new today, or a rehash of earlier
   coverage? A rehash is always grade C.
2. Keyword match: does it contain an S or A signal? If not, B at best.
3. Reasoning: how large is the catalyst relative to the company's market
   cap (contract size vs. capitalization)?
4. Result: grade (S-C), sector, and trading point per the criteria.

[Output] Respond with JSON only, no surrounding prose:
{"analysis_list": [{"stock": "...", "grade": "S|A|B|C", "sector": "...",
"point": "one-line trading plan", "reason": "why this grade, including the
keyword evidence", "reference_url": "a link taken from the supplied data"}]}

[Rules]
- S and A require the keyword evidence above; do not inflate grades.
- Drop items unrelated to any listed security.
- Merge duplicate items into the single most important entry.
- reference_url must come from the supplied data, never invented.`

// BuildPrompt renders the collected items as the user message. Securities
// and links are spelled out so the model can cite them.
func BuildPrompt(news []models.NewsItem, disclosures []models.Disclosure) string {
	var b strings.Builder

	b.WriteString("### 1. News ###\n")
	if len(news) == 0 {
		b.WriteString("(no news items)\n")
	}
	for _, item := range news {
		names := make([]string, 0, len(item.Securities))
		for _, s := range item.Securities {
			names = append(names, s.Name)
		}
		fmt.Fprintf(&b, "- Title: %s\n  Securities: %s\n  Link: %s\n  Summary: %s\n\n",
			item.Title, strings.Join(names, ", "), item.Link, item.Description)
	}

	b.WriteString("### 2. Filings ###\n")
	if len(disclosures) == 0 {
		b.WriteString("(no filings)\n")
	}
	for _, d := range disclosures {
		fmt.Fprintf(&b, "- Company: %s\n  Security: %s\n  Report: %s\n  Link: %s\n  Keyword: %s\n\n",
			d.CorpName, d.Security.Name, d.ReportName, d.ViewerURL, d.Keyword)
	}

	return b.String()
}
