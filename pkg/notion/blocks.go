package notion

import "github.com/jomei/notionapi"

// MaxRichTextLen is Notion's per-rich-text character limit. Callers must
// split longer content before building blocks.
const MaxRichTextLen = 1950

// Heading2 builds a level-two heading block.
func Heading2(text string) notionapi.Block {
	return &notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading2,
		},
		Heading2: notionapi.Heading{
			RichText: []notionapi.RichText{richText(text)},
		},
	}
}

// Paragraph builds a paragraph block from one rich-text run.
func Paragraph(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: []notionapi.RichText{richText(text)},
		},
	}
}

// NewPageRequest builds a page creation request under a parent page.
func NewPageRequest(parentPageID, title string, children []notionapi.Block) *notionapi.PageCreateRequest {
	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{richText(title)},
			},
		},
		Children: children,
	}
}

func richText(text string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: text},
	}
}
