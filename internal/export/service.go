package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
)

// Format is a rendering of a bill.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	// FormatText is rendered locally, without the backend.
	FormatText Format = "txt"
)

var ErrNoBill = errors.New("bill has no id")

// Document is a rendered bill as streamed by the backend.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Disposition string
}

type Source interface {
	DownloadBill(ctx context.Context, id int64, f Format) (*Document, error)
}

// Service saves bill renderings to disk.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Download writes the chosen rendering of b into dir and returns the path.
func (s *Service) Download(ctx context.Context, b bill.Bill, f Format, dir string) (string, error) {
	if b.ID == 0 {
		return "", ErrNoBill
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if f == FormatText {
		return s.writeReceipt(b, dir)
	}

	doc, err := s.source.DownloadBill(ctx, b.ID, f)
	if err != nil {
		return "", fmt.Errorf("downloading bill %d: %w", b.ID, err)
	}
	defer doc.Body.Close()

	path := filepath.Join(dir, determineFilename(doc, b, f))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(out, doc.Body); err != nil {
		out.Close()
		os.Remove(path)

		return "", fmt.Errorf("writing file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing file: %w", err)
	}

	return path, nil
}

func (s *Service) writeReceipt(b bill.Bill, dir string) (string, error) {
	path := filepath.Join(dir, baseName(b)+".txt")

	if err := os.WriteFile(path, []byte(Receipt(b)), 0o644); err != nil {
		return "", fmt.Errorf("writing receipt: %w", err)
	}

	return path, nil
}

func determineFilename(doc *Document, b bill.Bill, f Format) string {
	if doc.Disposition != "" {
		if _, params, err := mime.ParseMediaType(doc.Disposition); err == nil {
			if name, ok := params["filename"]; ok && name != "" {
				return strings.ReplaceAll(filepath.Base(name), " ", "_")
			}
		}
	}

	ext := "." + string(f)

	if doc.ContentType != "" {
		if exts, _ := mime.ExtensionsByType(doc.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	return baseName(b) + ext
}

// baseName is the bill number made safe for a filename, or the id.
func baseName(b bill.Bill) string {
	if b.Number == "" {
		return "bill_" + strconv.FormatInt(b.ID, 10)
	}

	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, b.Number)
}

// Receipt renders b as plain text, one line per item followed by totals.
func Receipt(b bill.Bill) string {
	var sb strings.Builder

	title := b.Number
	if title == "" {
		title = "Bill " + strconv.FormatInt(b.ID, 10)
	}

	fmt.Fprintf(&sb, "%s (%s)\n", title, b.Status)

	if !b.CreatedAt.IsZero() {
		sb.WriteString(format.Date(b.CreatedAt) + "\n")
	}

	sb.WriteString("\n")

	for _, it := range b.Items {
		fmt.Fprintf(&sb, "* %s | %d x %s | %s\n",
			format.Truncate(it.ProductName, 40), it.Quantity, format.Currency(it.UnitPrice), format.Currency(it.LineTotal()))
	}

	t := bill.Compute(b.Items, b.Discount, b.Tax)
	if b.Totals != nil {
		t = *b.Totals
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Subtotal: %s\n", format.Currency(t.Subtotal))

	if b.Discount != nil {
		fmt.Fprintf(&sb, "Discount: -%s\n", format.Currency(t.Discount))
	}

	if b.Tax != nil {
		fmt.Fprintf(&sb, "%s: %s\n", b.Tax.Name, format.Currency(t.Tax))
	}

	fmt.Fprintf(&sb, "Total: %s\n", format.Currency(t.Total))

	return sb.String()
}
