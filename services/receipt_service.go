package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// GenerateEnrollmentReceipt renders a PDF receipt for a settled enrollment
// and uploads it to Cloudinary, returning the public URL.
func GenerateEnrollmentReceipt(enrollment models.Enrollment, student models.User, program models.Program) (string, error) {
	htmlData, err := generateReceiptHTML(enrollment, student, program)
	if err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return "", fmt.Errorf("failed to generate receipt PDF: %w", err)
	}

	return uploadToCloudinary(pdfBytes, enrollment.ID.String())
}

func generateReceiptHTML(enrollment models.Enrollment, student models.User, program models.Program) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	paymentRef := enrollment.PaymentID
	if enrollment.PaymentRef != nil {
		paymentRef = *enrollment.PaymentRef
	}

	data := struct {
		StudentName  string
		ProgramTitle string
		AmountPaid   string
		PaymentRef   string
		IssuedOn     string
	}{
		StudentName:  student.FullName,
		ProgramTitle: program.Title,
		AmountPaid:   fmt.Sprintf("%.2f", enrollment.AmountPaid),
		PaymentRef:   paymentRef,
		IssuedOn:     time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
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

func uploadToCloudinary(fileBytes []byte, enrollmentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", enrollmentID, uuid.New().String()),
		Folder:       "learnlab_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
