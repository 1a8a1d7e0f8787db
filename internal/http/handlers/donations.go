package handlers

import (
	"net/http"
	"time"

	"backed/internal/domain"
	"backed/internal/funding"
)

type donationRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	IsAnonymous bool   `json:"isAnonymous"`
	// Reference lets the client retry a timed-out submission without
	// risking a double charge.
	Reference string `json:"reference"`
}

type donationResponse struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"projectId"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	ReceiptNumber    string    `json:"receiptNumber"`
	PaymentReference string    `json:"paymentReference"`
	AlreadyProcessed bool      `json:"alreadyProcessed,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toDonationResponse(d domain.Donation, already bool) donationResponse {
	return donationResponse{
		ID:               d.ID,
		ProjectID:        d.ProjectID,
		Amount:           d.Amount,
		Currency:         d.Currency,
		Status:           string(d.Status),
		ReceiptNumber:    d.ReceiptNumber,
		PaymentReference: d.PaymentReference,
		AlreadyProcessed: already,
		CreatedAt:        d.CreatedAt,
	}
}

// DonationsCreate handles POST /donations.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}

	result, err := a.Processor.SubmitDonation(r.Context(), funding.SubmitRequest{
		DonorID:     alumni.ID,
		ProjectID:   req.ProjectID,
		Amount:      req.Amount,
		IsAnonymous: req.IsAnonymous,
		Reference:   req.Reference,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}

	code := http.StatusCreated
	if result.AlreadyProcessed {
		code = http.StatusOK
	}
	a.json(w, code, toDonationResponse(result.Donation, result.AlreadyProcessed))
}

// DonationsListMine handles GET /donations.
func (a *App) DonationsListMine(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	donations, err := a.Donations.ListByDonor(r.Context(), alumni.ID, 50)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]donationResponse, 0, len(donations))
	for _, d := range donations {
		items = append(items, toDonationResponse(d, false))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
