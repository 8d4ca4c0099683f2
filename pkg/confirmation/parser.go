package confirmation

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Selectors and attributes of the mobile confirmation page.
const (
	ListSelector  = "#mobileconf_list"
	EmptySelector = "#mobileconf_empty"
	EntrySelector = ".mobileconf_list_entry"
	IDAttr        = "data-confid"
	KeyAttr       = "data-key"
)

// ErrUnrecognizedDocument indicates the document does not look like a
// confirmation page.
var ErrUnrecognizedDocument = errors.New("confirmation: unrecognized document structure")

// Parse extracts confirmations from a confirmation page.
//
// A page containing the confirmation list always yields a non-nil Set, which
// is empty when no entry could be parsed. Entries with a missing, malformed or
// zero id or key are skipped and logged. A page with neither the list nor the
// empty-state marker yields ErrUnrecognizedDocument and a nil Set.
func Parse(doc *html.Node, logger *zap.Logger) (Set, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrUnrecognizedDocument)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	root := goquery.NewDocumentFromNode(doc)
	list := root.Find(ListSelector)
	if list.Length() == 0 {
		if root.Find(EmptySelector).Length() > 0 {
			return Set{}, nil
		}
		return nil, ErrUnrecognizedDocument
	}

	set := Set{}
	list.Find(EntrySelector).Each(func(i int, entry *goquery.Selection) {
		c, err := parseEntry(entry)
		if err != nil {
			logger.Warn("skipping confirmation entry", zap.Int("index", i), zap.Error(err))
			return
		}
		set.Add(c)
	})
	return set, nil
}

// ParseReader parses r as HTML and extracts confirmations from it.
func ParseReader(r io.Reader, logger *zap.Logger) (Set, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("confirmation: parse html: %w", err)
	}
	return Parse(doc, logger)
}

func parseEntry(entry *goquery.Selection) (Confirmation, error) {
	rawID, ok := entry.Attr(IDAttr)
	if !ok {
		return Confirmation{}, fmt.Errorf("missing %s", IDAttr)
	}
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return Confirmation{}, fmt.Errorf("invalid %s %q: %w", IDAttr, rawID, err)
	}
	if id == 0 {
		return Confirmation{}, fmt.Errorf("zero %s", IDAttr)
	}

	rawKey, ok := entry.Attr(KeyAttr)
	if !ok {
		return Confirmation{}, fmt.Errorf("missing %s", KeyAttr)
	}
	key, err := strconv.ParseUint(rawKey, 10, 64)
	if err != nil {
		return Confirmation{}, fmt.Errorf("invalid %s %q: %w", KeyAttr, rawKey, err)
	}
	if key == 0 {
		return Confirmation{}, fmt.Errorf("zero %s", KeyAttr)
	}

	return New(uint32(id), key), nil
}
