package egress

import (
	"bytes"
	"context"
	"embed"
	"html/template"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/pkg/mail"
)

const (
	emailSubject   = "Reddit Problem Report!"
	emailPlainBody = "This email contains an HTML report."
	emailFooter    = "©2026 Rocksoncodes. All rights reserved."
)

//go:embed templates/card.gohtml
var templateFS embed.FS

var cardTemplate = template.Must(template.ParseFS(templateFS, "templates/card.gohtml"))

// EmailPublisher renders a brief into the HTML report card and sends it.
type EmailPublisher struct {
	sender mail.Sender
	from   string
	to     []string
}

// NewEmailPublisher creates the email channel.
func NewEmailPublisher(sender mail.Sender, from string, to []string) *EmailPublisher {
	return &EmailPublisher{sender: sender, from: from, to: to}
}

func (p *EmailPublisher) Name() string { return "email" }

func (p *EmailPublisher) Publish(ctx context.Context, brief *model.CuratedBrief) error {
	html, err := renderCard(brief.Content)
	if err != nil {
		return eris.Wrapf(err, "egress: render brief %d", brief.ID)
	}

	err = p.sender.Send(ctx, mail.Message{
		From:    p.from,
		To:      p.to,
		Subject: emailSubject,
		Text:    emailPlainBody,
		HTML:    html,
	})
	if err != nil {
		return eris.Wrapf(err, "egress: email brief %d", brief.ID)
	}

	zap.L().Info("report email sent",
		zap.Int64("brief_id", brief.ID),
		zap.Int("recipients", len(p.to)),
	)
	return nil
}

// renderCard converts the brief's markdown to HTML and wraps it in the card
// template.
func renderCard(content string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(content), &body); err != nil {
		return "", eris.Wrap(err, "egress: markdown conversion")
	}

	var out bytes.Buffer
	err := cardTemplate.Execute(&out, struct {
		Title   string
		Content template.HTML
		Footer  string
	}{
		Title:   reportTitle,
		Content: template.HTML(body.String()),
		Footer:  emailFooter,
	})
	if err != nil {
		return "", eris.Wrap(err, "egress: render template")
	}
	return out.String(), nil
}
