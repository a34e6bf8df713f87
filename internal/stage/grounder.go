package stage

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// TextExtractor turns a source file into per-page text. The built-in
// extractor handles plain text with form-feed page breaks; PDF and OCR
// extractors plug in from outside the core.
type TextExtractor interface {
	Extract(path string) ([]string, error)
}

// PlainTextExtractor reads a text file and splits pages on form feeds.
type PlainTextExtractor struct{}

// Extract reads the file and returns one string per page. A missing file
// surfaces the underlying fs.ErrNotExist.
func (PlainTextExtractor) Extract(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return strings.Split(string(data), "\f"), nil
}

// Grounder converts a source file into a Document of ordered sections using
// heading heuristics. It is the only stage that does not call the model.
type Grounder struct {
	extractor       TextExtractor
	maxSectionChars int
	log             *zap.SugaredLogger
}

// NewGrounder creates a grounder with the built-in plain-text extractor.
func NewGrounder(cfg model.GroundingConfig, log *zap.SugaredLogger) *Grounder {
	return &Grounder{
		extractor:       PlainTextExtractor{},
		maxSectionChars: cfg.MaxSectionChars,
		log:             log,
	}
}

// WithExtractor swaps in an external text extractor (e.g. a PDF or OCR
// pipeline).
func (g *Grounder) WithExtractor(ex TextExtractor) *Grounder {
	g.extractor = ex
	return g
}

// headingNumber matches numbered headings like "3.", "2.1", "4) Results".
var headingNumber = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)

// sectionKeywords is the closed list of academic section names treated as
// headings when they appear alone on a short line.
var sectionKeywords = map[string]bool{
	"abstract":         true,
	"introduction":     true,
	"background":       true,
	"related work":     true,
	"methods":          true,
	"method":           true,
	"methodology":      true,
	"results":          true,
	"discussion":       true,
	"conclusion":       true,
	"conclusions":      true,
	"references":       true,
	"acknowledgments":  true,
	"acknowledgements": true,
}

func isHeading(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" || len(t) > 80 {
		return false
	}
	if headingNumber.MatchString(t) {
		return true
	}
	key := strings.ToLower(strings.TrimRight(t, ":. "))
	return sectionKeywords[key]
}

// headingTitle strips numbering from a heading line.
var headingPrefix = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+`)

func headingTitle(line string) string {
	t := strings.TrimSpace(line)
	t = headingPrefix.ReplaceAllString(t, "")
	return strings.TrimRight(t, ":. ")
}

type sectionDraft struct {
	title string
	pages map[int]bool
	body  strings.Builder
}

// Run extracts text from the source and partitions it into sections. When
// no headings are detected the whole document becomes a single section.
func (g *Grounder) Run(sourcePath, jobID string) (*model.Document, error) {
	pages, err := g.extractor.Extract(sourcePath)
	if err != nil {
		return nil, err
	}

	var drafts []*sectionDraft
	current := &sectionDraft{title: "Document", pages: map[int]bool{}}
	headingsFound := false

	for pageIdx, page := range pages {
		pageNum := pageIdx + 1
		for _, line := range strings.Split(page, "\n") {
			if isHeading(line) {
				headingsFound = true
				if strings.TrimSpace(current.body.String()) != "" || len(drafts) > 0 {
					drafts = append(drafts, current)
				}
				current = &sectionDraft{title: headingTitle(line), pages: map[int]bool{}}
				current.pages[pageNum] = true
				continue
			}
			if strings.TrimSpace(line) != "" {
				current.pages[pageNum] = true
			}
			current.body.WriteString(line)
			current.body.WriteByte('\n')
		}
	}
	drafts = append(drafts, current)

	if !headingsFound {
		// Collapse into one section spanning the whole document.
		g.log.Debugw("no headings detected, grounding as single section", "job_id", jobID)
		whole := &sectionDraft{title: "Document", pages: map[int]bool{}}
		for i, page := range pages {
			if strings.TrimSpace(page) != "" {
				whole.pages[i+1] = true
			}
			whole.body.WriteString(page)
			whole.body.WriteByte('\n')
		}
		if len(whole.pages) == 0 {
			whole.pages[1] = true
		}
		drafts = []*sectionDraft{whole}
	}

	doc := &model.Document{DocID: jobID}
	for _, d := range drafts {
		content := strings.TrimSpace(d.body.String())
		if headingsFound && content == "" && len(doc.Sections) == 0 && d.title == "Document" {
			// Empty preamble before the first real heading.
			continue
		}
		if len(content) > g.maxSectionChars && g.maxSectionChars > 0 {
			content = content[:g.maxSectionChars]
		}
		doc.Sections = append(doc.Sections, model.Section{
			SectionID: fmt.Sprintf("S%d", len(doc.Sections)+1),
			Title:     d.title,
			PageRange: sortedPages(d.pages),
			Content:   content,
		})
	}

	g.log.Infow("document grounded",
		"job_id", jobID, "sections", len(doc.Sections), "pages", len(pages))
	return doc, nil
}

func sortedPages(pages map[int]bool) []int {
	out := make([]int, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Ints(out)
	if len(out) == 0 {
		out = []int{1}
	}
	return out
}
