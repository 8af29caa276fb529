package wm

// ContentKind tags the payload variant carried by a window.
type ContentKind string

// Payload variants.
const (
	ContentFinder ContentKind = "finder"
	ContentText   ContentKind = "text"
	ContentImage  ContentKind = "image"
	ContentLink   ContentKind = "link"
)

// Content is the payload a window displays. The registry stores it verbatim
// and never looks inside; the rendering layer switches on the concrete type.
// Implementations are value types and must be treated as immutable.
type Content interface {
	ContentKind() ContentKind
}

// FinderContent points a Finder window at a location of the content tree.
type FinderContent struct {
	LocationID string `json:"locationId"`
}

// ContentKind implements Content.
func (FinderContent) ContentKind() ContentKind { return ContentFinder }

// FileInfo describes another item when a text window shows its info sheet.
type FileInfo struct {
	ItemID   string `json:"itemId"`
	Kind     string `json:"kind"`
	FileType string `json:"fileType,omitempty"`
	Location string `json:"location,omitempty"`
}

// TextContent is shown by txtfile windows.
type TextContent struct {
	Name        string    `json:"name"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Image       string    `json:"image,omitempty"`
	Description []string  `json:"description,omitempty"`
	Info        *FileInfo `json:"info,omitempty"`
}

// ContentKind implements Content.
func (TextContent) ContentKind() ContentKind { return ContentText }

// ImageContent is shown by imgfile windows.
type ImageContent struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption,omitempty"`
}

// ContentKind implements Content.
func (ImageContent) ContentKind() ContentKind { return ContentImage }

// LinkContent is shown by the safari window.
type LinkContent struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// ContentKind implements Content.
func (LinkContent) ContentKind() ContentKind { return ContentLink }
