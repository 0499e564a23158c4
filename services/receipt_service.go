package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/receipt.html
var receiptTemplates embed.FS

type ReceiptStore interface {
	SetReceiptURL(ctx context.Context, paymentID uuid.UUID, url string) error
}

// ReceiptService renders a PDF receipt for each settled payment and stores it
// on Cloudinary.
type ReceiptService struct {
	appName string
	cld     *cloudinary.Cloudinary
	store   ReceiptStore
	log     *zap.Logger
	tmpl    *template.Template
}

type receiptData struct {
	AppName       string
	Reference     string
	PaidAt        string
	GuestName     string
	ListingTitle  string
	CheckIn       string
	CheckOut      string
	Nights        int
	PaymentMethod string
	Currency      string
	Amount        string
}

func NewReceiptService(appName, cloudinaryURL string, store ReceiptStore, log *zap.Logger) (*ReceiptService, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	tmpl, err := template.ParseFS(receiptTemplates, "templates/receipt.html")
	if err != nil {
		return nil, err
	}
	return &ReceiptService{appName: appName, cld: cld, store: store, log: log.Named("receipt"), tmpl: tmpl}, nil
}

func (s *ReceiptService) PaymentSettled(booking models.Booking, payment models.BookingPayment) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fields := []zap.Field{zap.String("payment_id", payment.ID.String())}

	html, err := s.render(booking, payment)
	if err != nil {
		s.log.Error("failed to render receipt", append(fields, zap.Error(err))...)
		return
	}

	pdf, err := renderPDF(ctx, html)
	if err != nil {
		s.log.Error("failed to print receipt pdf", append(fields, zap.Error(err))...)
		return
	}

	url, err := s.upload(ctx, pdf, payment)
	if err != nil {
		s.log.Error("failed to upload receipt", append(fields, zap.Error(err))...)
		return
	}

	if err := s.store.SetReceiptURL(ctx, payment.ID, url); err != nil {
		s.log.Error("failed to save receipt url", append(fields, zap.Error(err))...)
		return
	}
	s.log.Info("receipt stored", append(fields, zap.String("url", url))...)
}

func (s *ReceiptService) render(booking models.Booking, payment models.BookingPayment) (string, error) {
	data := receiptData{
		AppName:       s.appName,
		Reference:     payment.TransactionReference,
		PaidAt:        payment.PaidAt.Format("January 2, 2006 15:04 MST"),
		GuestName:     booking.Guest.FullName,
		ListingTitle:  booking.Listing.Title,
		CheckIn:       booking.CheckIn.Format("Jan 2, 2006"),
		CheckOut:      booking.CheckOut.Format("Jan 2, 2006"),
		Nights:        booking.Nights(),
		PaymentMethod: payment.PaymentMethod,
		Currency:      payment.Currency,
		Amount:        payment.Amount.StringFixed(2),
	}

	var rendered bytes.Buffer
	if err := s.tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func renderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func (s *ReceiptService) upload(ctx context.Context, pdf []byte, payment models.BookingPayment) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(pdf), uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s", payment.BookingID),
		Folder:       "stay_booking_receipts",
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}
