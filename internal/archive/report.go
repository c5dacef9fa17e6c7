package archive

import (
	"encoding/json"
	"time"

	"github.com/skip2/go-qrcode"

	"kassensystem/internal/models"
	"kassensystem/internal/orders"
)

// Report is the printable close-out summary of one archived event. The
// QR code carries the summary payload so a report printout can be
// re-read by a scanner at the back office.
type Report struct {
	EventID        string                 `json:"event_id"`
	Name           string                 `json:"name"`
	StartDate      time.Time              `json:"start_date"`
	EndDate        time.Time              `json:"end_date"`
	InitialBalance models.Cents           `json:"initial_balance"`
	TotalRevenue   models.Cents           `json:"total_revenue"`
	TipTotal       models.Cents           `json:"tip_total"`
	Stats          orders.Stats           `json:"stats"`
	Volumes        []orders.ProductVolume `json:"volumes"`
}

// BuildReport computes the report aggregates of one archived event.
func BuildReport(ev models.ArchivedEvent) Report {
	var tipTotal models.Cents
	for _, t := range ev.Tips {
		tipTotal += t.Amount
	}
	return Report{
		EventID:        ev.ID,
		Name:           ev.Name,
		StartDate:      ev.StartDate,
		EndDate:        ev.EndDate,
		InitialBalance: ev.InitialBalance,
		TotalRevenue:   ev.TotalRevenue,
		TipTotal:       tipTotal,
		Stats:          orders.Aggregate(ev.Orders),
		Volumes:        orders.Volumes(ev.Orders),
	}
}

// Report builds the close-out report for one archived event.
func (s *Service) Report(eventID string) (Report, error) {
	ev, err := s.Get(eventID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(ev), nil
}

// ReportQR renders the report payload as a 256px PNG QR code.
func (s *Service) ReportQR(eventID string) ([]byte, error) {
	report, err := s.Report(eventID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, 256)
}
