package egress

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/pkg/notion"
)

const (
	reportTitle   = "Reddit Problem & Sentiment Report"
	reportHeading = "Discovered Problems"
)

// NotionPublisher renders a brief as a report page under a parent page.
type NotionPublisher struct {
	client       notion.Client
	parentPageID string
}

// NewNotionPublisher creates the Notion channel.
func NewNotionPublisher(client notion.Client, parentPageID string) *NotionPublisher {
	return &NotionPublisher{client: client, parentPageID: parentPageID}
}

func (p *NotionPublisher) Name() string { return "notion" }

// Publish creates the report page: a heading followed by paragraph blocks,
// each rich-text entry within Notion's per-entry character limit.
func (p *NotionPublisher) Publish(ctx context.Context, brief *model.CuratedBrief) error {
	blocks := buildReportBlocks(brief.Content)

	page, err := p.client.CreatePage(ctx, notion.NewPageRequest(p.parentPageID, reportTitle, blocks))
	if err != nil {
		return eris.Wrapf(err, "egress: publish brief %d to notion", brief.ID)
	}

	zap.L().Info("notion page created",
		zap.Int64("brief_id", brief.ID),
		zap.String("page_id", string(page.ID)),
		zap.Int("blocks", len(blocks)),
	)
	return nil
}

func buildReportBlocks(content string) []notionapi.Block {
	blocks := []notionapi.Block{notion.Heading2(reportHeading)}
	for _, chunk := range ChunkText(content, DefaultChunkSize) {
		// A 2000-char chunk still exceeds the rich-text limit; split again.
		for _, part := range ChunkText(chunk, notion.MaxRichTextLen) {
			blocks = append(blocks, notion.Paragraph(part))
		}
	}
	return blocks
}
