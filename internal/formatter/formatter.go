package formatter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// Formatter реализует app.Formatter: собирает письмо-дайджест в HTML и текстовом виде.
type Formatter struct {
	subjectPrefix string
	clock         func() time.Time
}

// NewFormatter создаёт новый экземпляр форматтера.
func NewFormatter(cfg config.Mail, clock func() time.Time) *Formatter {
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "[Polymer 뉴스]"
	}
	if clock == nil {
		clock = time.Now
	}
	return &Formatter{subjectPrefix: prefix, clock: clock}
}

// Subject возвращает тему письма для периода.
func (f *Formatter) Subject(periodLabel string) string {
	return fmt.Sprintf("%s %s 주요 동향", f.subjectPrefix, periodLabel)
}

type digestRow struct {
	No            int
	MainKeywords  string
	BonusKeywords string
	Title         string
	Summary       string
	Link          string
}

type digestView struct {
	PeriodLabel string
	Count       int
	Rows        []digestRow
	GeneratedAt string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: 'Malgun Gothic', Arial, sans-serif; font-size: 10pt; }
h2 { color: #00A651; border-bottom: 2px solid #00A651; padding-bottom: 10px; font-size: 14pt; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; font-size: 10pt; }
th { background: #00A651; color: white; padding: 8px; text-align: left; }
td { border: 1px solid #ddd; padding: 8px; vertical-align: top; }
tr:nth-child(even) { background: #f9f9f9; }
a { color: #00A651; text-decoration: underline; }
.footer { margin-top: 30px; color: #888; font-size: 9pt; border-top: 1px solid #ddd; padding-top: 15px; }
</style>
</head>
<body>
<h2>Polymer 뉴스 리포트 - {{.PeriodLabel}}</h2>
<p>PE · PP · PO · S-OIL · Aramco · Sabic 관련 주요 뉴스 (Top {{.Count}})</p>
{{- if .Rows}}
<table>
<tr>
<th style="width:3%">No.</th>
<th style="width:10%">Main</th>
<th style="width:8%">Bonus</th>
<th style="width:25%">제목</th>
<th style="width:49%">요약</th>
<th style="width:5%">링크</th>
</tr>
{{- range .Rows}}
<tr>
<td style="text-align:center">{{.No}}</td>
<td>{{.MainKeywords}}</td>
<td>{{.BonusKeywords}}</td>
<td>{{.Title}}</td>
<td>{{.Summary}}</td>
<td style="text-align:center"><a href="{{.Link}}">보기</a></td>
</tr>
{{- end}}
</table>
{{- end}}
<div class="footer">
<p>생성일시: {{.GeneratedAt}}</p>
</div>
</body>
</html>
`))

// BuildDigest реализует app.Formatter.
func (f *Formatter) BuildDigest(articles []news.Article, periodLabel string) (news.Digest, error) {
	view := digestView{
		PeriodLabel: periodLabel,
		Count:       len(articles),
		GeneratedAt: f.clock().Format("2006-01-02 15:04"),
	}
	for i, a := range articles {
		view.Rows = append(view.Rows, digestRow{
			No:            i + 1,
			MainKeywords:  a.Match.MainKeywords,
			BonusKeywords: a.Match.BonusKeywords,
			Title:         a.Title,
			Summary:       a.Summary,
			Link:          a.Link,
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, view); err != nil {
		return news.Digest{}, fmt.Errorf("render digest: %w", err)
	}

	return news.Digest{
		Subject: f.Subject(periodLabel),
		HTML:    buf.String(),
		Text:    buildText(view),
	}, nil
}

func buildText(view digestView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Polymer 뉴스 리포트 - %s (Top %d)\n\n", view.PeriodLabel, view.Count)
	for _, row := range view.Rows {
		fmt.Fprintf(&sb, "%d. %s\n", row.No, row.Title)
		if tags := joinNonEmpty(" / ", row.MainKeywords, row.BonusKeywords); tags != "" {
			fmt.Fprintf(&sb, "   [%s]\n", tags)
		}
		if row.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", row.Summary)
		}
		fmt.Fprintf(&sb, "   %s\n\n", row.Link)
	}
	fmt.Fprintf(&sb, "생성일시: %s\n", view.GeneratedAt)
	return sb.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
