package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/fourarental/rental-booking-backend/internal/models"
)

// ReceiptService renders booking receipts as PDF. Receipts exist only
// for paid bookings; the price breakdown is printed verbatim from the
// stored snapshot.
type ReceiptService struct {
	logger *logrus.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(logger *logrus.Logger) *ReceiptService {
	return &ReceiptService{logger: logger}
}

// Generate renders the receipt PDF for a booking
func (s *ReceiptService) Generate(booking *models.Booking) ([]byte, error) {
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil, fmt.Errorf("receipt is only available for paid bookings")
	}

	qrCode, err := qrcode.Encode(booking.BookingReference, qrcode.Medium, 128)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode receipt QR code")
		return nil, fmt.Errorf("unable to generate receipt")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "4A Rental", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Booking Receipt", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Reference: "+booking.BookingReference, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Issued: "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// QR code resolves back to the booking reference for pickup desk scans
	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrCode))
	pdf.ImageOptions("qr", 155, 20, 35, 35, false, imgOpts, 0, "")

	// Rental details
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Rental Details", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)

	details := [][2]string{
		{"Vehicle", booking.VehicleName},
		{"Pickup", booking.PickupDate.Format("Mon, 02 Jan 2006 3:04 PM")},
		{"Return", booking.ReturnDate.Format("Mon, 02 Jan 2006 3:04 PM")},
		{"Duration", fmt.Sprintf("%d day(s) (%s)", booking.Pricing.RentalDays, booking.Pricing.RentalType)},
	}
	if booking.PickupType == models.PickupTypeDelivery {
		details = append(details, [2]string{"Delivery To", booking.PickupLocation})
		if booking.DeliveryTimeSlot.Valid {
			details = append(details, [2]string{"Time Slot", booking.DeliveryTimeSlot.String})
		}
	} else {
		details = append(details, [2]string{"Pickup At", booking.PickupLocation})
	}

	driverName := strings.TrimSpace(booking.Drivers.Primary.FirstName + " " + booking.Drivers.Primary.LastName)
	details = append(details, [2]string{"Primary Driver", driverName})
	if n := len(booking.Drivers.Additional); n > 0 {
		details = append(details, [2]string{"Additional Drivers", fmt.Sprintf("%d", n)})
	}

	for _, row := range details {
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Price breakdown
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Price Breakdown", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)

	p := booking.Pricing
	s.amountRow(pdf, fmt.Sprintf("Base (%s rate)", p.RentalType), p.BaseCost, p.Currency)
	if p.DeliveryFee > 0 {
		s.amountRow(pdf, "Delivery fee", p.DeliveryFee, p.Currency)
	}
	if p.AdditionalDriverCount > 0 {
		s.amountRow(pdf, fmt.Sprintf("Additional drivers (%d)", p.AdditionalDriverCount), p.AdditionalDriverCost, p.Currency)
	}
	if p.StudentDiscount > 0 {
		s.amountRow(pdf, "Student discount", -p.StudentDiscount, p.Currency)
	}
	s.amountRow(pdf, "Subtotal", p.Subtotal, p.Currency)
	s.amountRow(pdf, "Tax", p.TaxAmount, p.Currency)

	pdf.SetFont("Arial", "B", 12)
	s.amountRow(pdf, "Total Paid", p.TotalAmount, p.Currency)

	if booking.PaymentReference.Valid {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, "Payment reference: "+booking.PaymentReference.String, "", 1, "L", false, 0, "")
	}

	// Footer
	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 10, "Present this receipt and a valid driver's license at pickup.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.WithError(err).Error("Failed to render receipt PDF")
		return nil, fmt.Errorf("unable to generate receipt")
	}

	return buf.Bytes(), nil
}

func (s *ReceiptService) amountRow(pdf *gofpdf.Fpdf, label string, amount float64, currency string) {
	pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency)), "", 1, "R", false, 0, "")
}
