package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var _ Client = (*MockClient)(nil)
}

func TestCreatePage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(&notionapi.Page{ID: "page-1"}, nil).Once()

	page, err := mc.CreatePage(ctx, NewPageRequest("parent-1", "Report", nil))
	require.NoError(t, err)
	assert.Equal(t, notionapi.ObjectID("page-1"), page.ID)
	mc.AssertExpectations(t)
}

func TestNewPageRequest(t *testing.T) {
	t.Parallel()

	children := []notionapi.Block{
		Heading2("Discovered Problems"),
		Paragraph("First section of the brief."),
	}
	req := NewPageRequest("parent-42", "Reddit Problem & Sentiment Report", children)

	assert.Equal(t, notionapi.ParentTypePageID, req.Parent.Type)
	assert.Equal(t, notionapi.PageID("parent-42"), req.Parent.PageID)

	title, ok := req.Properties["title"].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Reddit Problem & Sentiment Report", title.Title[0].Text.Content)

	require.Len(t, req.Children, 2)
}

func TestBlockShapes(t *testing.T) {
	t.Parallel()

	h, ok := Heading2("Discovered Problems").(*notionapi.Heading2Block)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockTypeHeading2, h.Type)
	require.Len(t, h.Heading2.RichText, 1)
	assert.Equal(t, "Discovered Problems", h.Heading2.RichText[0].Text.Content)

	p, ok := Paragraph("body text").(*notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockTypeParagraph, p.Type)
	assert.Equal(t, "body text", p.Paragraph.RichText[0].Text.Content)
}
