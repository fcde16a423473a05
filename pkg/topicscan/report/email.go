package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/ingest"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	emailClusters       = 12
	htmlArticleScan     = 8
	htmlArticles        = 6
	textArticles        = 5
	snippetChars        = 150
	defaultAccent       = "#3b82f6"
	defaultAccentBg     = "#eff6ff"
	subjectDateTemplate = "Trending Topics %s - Marketing, AI & Analytics"
)

type accent struct {
	key   string
	color string
	bg    string
	words []string
}

// Checked in this order; the first accent whose word occurs anywhere in the
// joined top terms wins.
var accents = []accent{
	{"marketing_digital", "#0891b2", "#ecfeff", []string{"marketing", "seo", "social", "advertising"}},
	{"ai_ml", "#7c3aed", "#f5f3ff", []string{"ai", "llm", "ml", "generative"}},
	{"data_analytics", "#059669", "#ecfdf5", []string{"analytics", "data", "bigquery", "ga4"}},
}

func accentFor(topTerms []string) (string, string) {
	joined := strings.Join(topTerms, " ")
	for _, a := range accents {
		for _, w := range a.words {
			if strings.Contains(joined, w) {
				return a.color, a.bg
			}
		}
	}
	return defaultAccent, defaultAccentBg
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends the newsletter over SMTP. smtp.SendMail upgrades with
// STARTTLS when the server offers it, which PLAIN auth requires.
type Mailer struct {
	cfg  config.Email
	send SendFunc
	now  func() time.Time
	log  logger.Logger
}

func NewMailer(cfg config.Email, log logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, now: time.Now, log: logger.OrNop(log)}
}

// WithSender replaces smtp.SendMail. A nil fn keeps the current sender.
func (m *Mailer) WithSender(fn SendFunc) *Mailer {
	if fn != nil {
		m.send = fn
	}
	return m
}

// Send builds and delivers the newsletter. It reports whether the mail went
// out; configuration gaps and SMTP failures are logged, not returned.
func (m *Mailer) Send(ctx context.Context, clusters []model.Cluster, items []model.Item, meta Metadata, intro string) bool {
	if !m.cfg.Enabled {
		m.log.Info("Email report disabled")
		return false
	}
	if m.cfg.Sender == "" || m.cfg.AppPassword == "" || len(m.cfg.Recipients) == 0 {
		m.log.Error("Email config incomplete (sender, app_password or recipients)")
		return false
	}
	if err := ctx.Err(); err != nil {
		m.log.Warn("Email skipped", logger.Error(err))
		return false
	}

	if meta.ScanDate == "" {
		meta.ScanDate = m.now().Format("2006-01-02")
	}
	htmlBody, err := buildHTML(clusters, items, meta, intro)
	if err != nil {
		m.log.Error("Render newsletter failed", logger.Error(err))
		return false
	}
	msg, err := m.compose(fmt.Sprintf(subjectDateTemplate, m.now().Format("2006-01-02")), buildText(clusters, items, meta, intro), htmlBody)
	if err != nil {
		m.log.Error("Compose newsletter failed", logger.Error(err))
		return false
	}

	host := m.cfg.SMTPServer
	addr := net.JoinHostPort(host, strconv.Itoa(m.cfg.SMTPPort))
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.AppPassword, host)
	if err := m.send(addr, auth, m.cfg.Sender, m.cfg.Recipients, msg); err != nil {
		m.log.Error("Sending email failed", logger.String("server", addr), logger.Error(err))
		return false
	}
	m.log.Info("Newsletter sent", logger.Strings("recipients", m.cfg.Recipients))
	return true
}

func (m *Mailer) compose(subject, textBody, htmlBody string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct{ ctype, content string }{
		{"text/plain", textBody},
		{"text/html", htmlBody},
	} {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", part.ctype+"; charset=utf-8")
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

type articleView struct {
	Title   string
	URL     string
	Snippet string
	Source  string
}

type sectionView struct {
	Label    string
	Size     int
	Color    template.CSS
	Bg       template.CSS
	Summary  model.Summary
	Articles []articleView
}

type newsletterView struct {
	ScanDate   string
	TotalItems int
	Sources    string
	Intro      string
	Sections   []sectionView
}

func snippet(desc string) string {
	s := ingest.StripHTML(desc)
	r := []rune(s)
	if len(r) > snippetChars {
		s = string(r[:snippetChars])
	}
	return strings.TrimSpace(s)
}

// titleCase upper-cases the first letter of every run of letters.
func titleCase(s string) string {
	r := []rune(s)
	start := true
	for i, c := range r {
		if !unicode.IsLetter(c) {
			start = true
			continue
		}
		if start {
			r[i] = unicode.ToUpper(c)
		} else {
			r[i] = unicode.ToLower(c)
		}
		start = false
	}
	return string(r)
}

func buildSections(clusters []model.Cluster, items []model.Item) []sectionView {
	var out []sectionView
	for i, cl := range clusters {
		if i == emailClusters {
			break
		}
		fg, bg := accentFor(cl.TopTerms)
		sec := sectionView{Label: titleCase(cl.Label), Size: cl.Size, Color: template.CSS(fg), Bg: template.CSS(bg)}
		if cl.Summary != nil {
			sec.Summary = *cl.Summary
		}
		for j, idx := range cl.ItemIndices {
			if j == htmlArticleScan || len(sec.Articles) == htmlArticles {
				break
			}
			if idx < 0 || idx >= len(items) {
				continue
			}
			it := items[idx]
			if it.Title == "" || it.URL == "" {
				continue
			}
			sec.Articles = append(sec.Articles, articleView{
				Title:   it.Title,
				URL:     it.URL,
				Snippet: snippet(it.Description),
				Source:  it.Source,
			})
		}
		out = append(out, sec)
	}
	return out
}

func buildHTML(clusters []model.Cluster, items []model.Item, meta Metadata, intro string) (string, error) {
	view := newsletterView{
		ScanDate:   meta.ScanDate,
		TotalItems: meta.TotalItemsFetched,
		Sources:    strings.Join(meta.SourcesUsed, ", "),
		Intro:      intro,
		Sections:   buildSections(clusters, items),
	}
	var buf bytes.Buffer
	if err := newsletterTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildText(clusters []model.Cluster, items []model.Item, meta Metadata, intro string) string {
	lines := []string{
		"TRENDING TOPICS - " + meta.ScanDate,
		"Marketing, AI & Analytics",
		fmt.Sprintf("%d source articles", meta.TotalItemsFetched),
		strings.Repeat("=", 60),
	}
	if intro != "" {
		lines = append(lines, "", intro, "")
	}
	for i, cl := range clusters {
		if i == emailClusters {
			break
		}
		lines = append(lines,
			"\n"+strings.Repeat("─", 50),
			fmt.Sprintf("%d. %s", i+1, strings.ToUpper(cl.Label)),
			fmt.Sprintf("   %d articles", cl.Size),
		)
		if s := cl.Summary; s != nil {
			if s.Summary != "" {
				lines = append(lines, "\n   "+s.Summary)
			}
			if s.WhyItMatters != "" {
				lines = append(lines, "\n   Why it matters: "+s.WhyItMatters)
			}
			if s.ArticleIdea != "" {
				lines = append(lines, "\n   Article idea: "+s.ArticleIdea)
			}
			if s.ArticleAngle != "" {
				lines = append(lines, "   Angle: "+s.ArticleAngle)
			}
		}
		lines = append(lines, "")
		for j, idx := range cl.ItemIndices {
			if j == textArticles {
				break
			}
			if idx < 0 || idx >= len(items) || items[idx].Title == "" {
				continue
			}
			lines = append(lines, "   - "+items[idx].Title)
			if items[idx].URL != "" {
				lines = append(lines, "     "+items[idx].URL)
			}
		}
	}
	return strings.Join(lines, "\n")
}

var newsletterTmpl = template.Must(template.New("newsletter").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"></head>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:680px;margin:0 auto;padding:20px;color:#1f2937;background:#ffffff;">

<div style="background:linear-gradient(135deg,#1e40af,#7c3aed);padding:28px 24px;border-radius:12px;color:white;margin-bottom:28px;">
  <h1 style="margin:0 0 6px;font-size:24px;font-weight:700;">Trending Topics</h1>
  <p style="margin:0;opacity:0.9;font-size:15px;">Marketing, AI &amp; Analytics | {{.ScanDate}}</p>
  <p style="margin:10px 0 0;opacity:0.7;font-size:13px;">{{.TotalItems}} source articles from {{.Sources}}</p>
</div>
{{if .Intro}}
<div style="background:#f8fafc;border-left:4px solid #3b82f6;padding:16px 20px;margin-bottom:28px;border-radius:0 8px 8px 0;">
  <p style="margin:0;font-size:15px;line-height:1.6;color:#334155;">{{.Intro}}</p>
</div>
{{end}}
{{range .Sections}}
<div style="margin-bottom:28px;border:1px solid #e5e7eb;border-radius:12px;overflow:hidden;">
  <div style="background:{{.Bg}};padding:16px 20px;border-bottom:1px solid #e5e7eb;">
    <h2 style="margin:0;font-size:17px;color:{{.Color}};">{{.Label}}</h2>
    <span style="font-size:12px;color:#9ca3af;">{{.Size}} articles</span>
  </div>
  <div style="padding:16px 20px;">
    {{with .Summary.Summary}}<p style="margin:0 0 10px;font-size:14px;line-height:1.6;color:#374151;">{{.}}</p>{{end}}
    {{with .Summary.WhyItMatters}}<p style="margin:0 0 10px;font-size:13px;line-height:1.5;color:#6b7280;"><strong style="color:#374151;">Why it matters:</strong> {{.}}</p>{{end}}
    {{if or .Summary.ArticleIdea .Summary.ArticleAngle}}
    <div style="background:#fefce8;border:1px solid #fde68a;padding:12px 16px;border-radius:8px;margin:12px 0;">
      <p style="margin:0 0 4px;font-size:12px;font-weight:600;color:#92400e;text-transform:uppercase;">LinkedIn article idea</p>
      {{with .Summary.ArticleIdea}}<p style="margin:0 0 6px;font-size:14px;font-weight:600;color:#1f2937;">{{.}}</p>{{end}}
      {{with .Summary.ArticleAngle}}<p style="margin:0;font-size:13px;color:#78716c;line-height:1.5;">{{.}}</p>{{end}}
    </div>
    {{end}}
    {{if .Articles}}<div style="margin-top:12px;">
    {{range .Articles}}
      <div style="padding:8px 0;border-bottom:1px solid #f3f4f6;">
        <a href="{{.URL}}" style="text-decoration:none;color:#1e40af;font-size:14px;font-weight:500;line-height:1.4;">{{.Title}}</a>
        {{with .Snippet}}<p style="margin:4px 0 0;font-size:12px;color:#6b7280;line-height:1.4;">{{.}}</p>{{end}}
        <p style="margin:2px 0 0;"><span style="font-size:11px;color:#9ca3af;">{{.Source}}</span></p>
      </div>
    {{end}}
    </div>{{end}}
  </div>
</div>
{{end}}
<div style="margin-top:36px;padding:20px;background:#f9fafb;border-radius:8px;font-size:12px;color:#9ca3af;text-align:center;">
  <p style="margin:0;">Generated by Topic Scanner</p>
  <p style="margin:4px 0 0;">Sources: Google News, Reddit, HackerNews, Google Trends</p>
</div>

</body>
</html>`))
