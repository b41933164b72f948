package travelapimodels

import (
	"time"

	"github.com/pkg/errors"
	apimodels "travel-tools-backend/models/api"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type TravelRequestData struct {
	PolicyID             string                      `json:"policy_id"`      // ид политики (необязательно, иначе политика по умолчанию)
	TripType             models.TripType             `json:"trip_type"`      // one_way/round_trip/multi_city
	Origin               string                      `json:"origin"`         // IATA код вылета
	Destination          string                      `json:"destination"`    // IATA код прилёта
	DepartureDate        *time.Time                  `json:"departure_date"`
	ReturnDate           *time.Time                  `json:"return_date"`
	Justification        string                      `json:"justification"`  // обоснование поездки
	TravelerCount        int                         `json:"traveler_count"`
	BudgetMinor          *int64                      `json:"budget_minor"`
	Currency             string                      `json:"currency"`
	RequestedItineraries []dbmodels.ItinerarySegment `json:"requested_itineraries"`
	OfferSnapshot        map[string]interface{}      `json:"offer_snapshot"`
}

func (t TravelRequestData) Validate() error {
	if err := t.TripType.Validate(); err != nil {
		return err
	}
	if t.Origin != "" && len(t.Origin) != 3 {
		return errors.New("код аэропорта вылета должен состоять из 3 символов")
	}
	if t.Destination != "" && len(t.Destination) != 3 {
		return errors.New("код аэропорта прилёта должен состоять из 3 символов")
	}
	if t.TravelerCount < 0 {
		return errors.New("количество путешественников не может быть отрицательным")
	}
	if t.BudgetMinor != nil && *t.BudgetMinor < 0 {
		return errors.New("бюджет не может быть отрицательным")
	}
	return nil
}

type TravelRequestCreateData struct {
	TravelRequestData
	AutoSubmit bool `json:"auto_submit"` // сразу отправить на согласование
}

type DecisionData struct {
	Comment string `json:"comment"` // комментарий согласующего
}

type TrFilter struct {
	apimodels.Pagination
	Status models.TRStatus `json:"status"` // фильтр по статусу
	Mine   bool            `json:"mine"`   // только собственные заявки
}

type TravelRequestView struct {
	ID             string                      `json:"id"`
	Reference      string                      `json:"reference"`
	Status         models.TRStatus             `json:"status"`
	StatusName     string                      `json:"status_name"`
	EmployeeID     string                      `json:"employee_company_user_id"`
	EmployeeName   string                      `json:"employee_name,omitempty"`
	PolicyID       string                      `json:"policy_id,omitempty"`
	TripType       models.TripType             `json:"trip_type,omitempty"`
	Origin         string                      `json:"origin,omitempty"`
	Destination    string                      `json:"destination,omitempty"`
	DepartureDate  *time.Time                  `json:"departure_date,omitempty"`
	ReturnDate     *time.Time                  `json:"return_date,omitempty"`
	Justification  string                      `json:"justification,omitempty"`
	TravelerCount  int                         `json:"traveler_count"`
	BudgetMinor    *int64                      `json:"budget_minor,omitempty"`
	Currency       string                      `json:"currency,omitempty"`
	Itineraries    []dbmodels.ItinerarySegment `json:"requested_itineraries,omitempty"`
	ApprovalState  dbmodels.ApprovalState      `json:"approval_state"`
	Approvals      []ApprovalView              `json:"approvals,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	SubmittedAt    *time.Time                  `json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time                  `json:"approved_at,omitempty"`
	RejectedAt     *time.Time                  `json:"rejected_at,omitempty"`
	CancelledAt    *time.Time                  `json:"cancelled_at,omitempty"`
}

func TravelRequestConvert(rec dbmodels.TravelRequest) TravelRequestView {
	result := TravelRequestView{
		ID:            rec.ID,
		Reference:     rec.Reference,
		Status:        rec.Status,
		StatusName:    rec.Status.ToHuman(),
		EmployeeID:    rec.EmployeeCompanyUserID,
		TripType:      rec.TripType,
		Origin:        rec.Origin,
		Destination:   rec.Destination,
		DepartureDate: rec.DepartureDate,
		ReturnDate:    rec.ReturnDate,
		Justification: rec.Justification,
		TravelerCount: rec.TravelerCount,
		BudgetMinor:   rec.BudgetMinor,
		Currency:      rec.Currency,
		Itineraries:   rec.RequestedItineraries,
		ApprovalState: rec.ApprovalState,
		CreatedAt:     rec.CreatedAt,
		SubmittedAt:   rec.SubmittedAt,
		ApprovedAt:    rec.ApprovedAt,
		RejectedAt:    rec.RejectedAt,
		CancelledAt:   rec.CancelledAt,
	}
	if rec.PolicyID != nil {
		result.PolicyID = *rec.PolicyID
	}
	if rec.Employee != nil {
		result.EmployeeName = rec.Employee.GetDisplayName()
	}
	for _, approval := range rec.Approvals {
		result.Approvals = append(result.Approvals, ApprovalConvert(approval))
	}
	return result
}

type ApprovalView struct {
	ID           string                `json:"id"`
	Level        int                   `json:"level"`
	ApproverID   string                `json:"approver_company_user_id"`
	ApproverName string                `json:"approver_name,omitempty"`
	Status       models.ApprovalStatus `json:"status"`
	DecidedAt    *time.Time            `json:"decided_at,omitempty"`
	Comment      string                `json:"comment,omitempty"`
}

func ApprovalConvert(rec dbmodels.TravelApproval) ApprovalView {
	result := ApprovalView{
		ID:         rec.ID,
		Level:      rec.Level,
		ApproverID: rec.ApproverCompanyUserID,
		Status:     rec.Status,
		DecidedAt:  rec.DecidedAt,
		Comment:    rec.Comment,
	}
	if rec.Approver != nil {
		result.ApproverName = rec.Approver.GetDisplayName()
	}
	return result
}

type CommentData struct {
	Body       string `json:"body"`       // текст комментария
	Visibility string `json:"visibility"` // internal/shared
}

func (c CommentData) Validate() error {
	if c.Body == "" {
		return errors.New("пустой комментарий")
	}
	return nil
}

type CommentView struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_company_user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Visibility string    `json:"visibility"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func CommentConvert(rec dbmodels.TravelRequestComment) CommentView {
	result := CommentView{
		ID:         rec.ID,
		AuthorID:   rec.AuthorCompanyUserID,
		Visibility: rec.Visibility,
		Body:       rec.Body,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Author != nil {
		result.AuthorName = rec.Author.GetDisplayName()
	}
	return result
}
