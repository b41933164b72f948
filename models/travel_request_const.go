package models

type TRStatus string

const (
	TRStatusDraft           TRStatus = "draft"
	TRStatusPendingApproval TRStatus = "pending_approval"
	TRStatusApproved        TRStatus = "approved"
	TRStatusRejected        TRStatus = "rejected"
	TRStatusCancelled       TRStatus = "cancelled"
)

var trStatusHumanName = map[TRStatus]string{
	TRStatusDraft:           "Черновик",
	TRStatusPendingApproval: "На согласовании",
	TRStatusApproved:        "Согласована",
	TRStatusRejected:        "Отклонена",
	TRStatusCancelled:       "Отменена",
}

func (s TRStatus) ToHuman() string {
	if human, exist := trStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

var trStatusTransitions = map[TRStatus][]TRStatus{
	TRStatusDraft:           {TRStatusPendingApproval, TRStatusApproved, TRStatusCancelled},
	TRStatusPendingApproval: {TRStatusApproved, TRStatusRejected, TRStatusCancelled},
	TRStatusApproved:        {},
	TRStatusRejected:        {},
	TRStatusCancelled:       {},
}

// IsAllowChange проверяет допустимость перехода статуса заявки
func (s TRStatus) IsAllowChange(to TRStatus) bool {
	for _, allowed := range trStatusTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s TRStatus) IsTerminal() bool {
	return len(trStatusTransitions[s]) == 0
}

func (s TRStatus) AllowDecision() bool {
	return s == TRStatusPendingApproval
}

func (s TRStatus) AllowCancel() bool {
	return s == TRStatusDraft || s == TRStatusPendingApproval
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var approvalStatusHumanName = map[ApprovalStatus]string{
	ApprovalStatusPending:  "Ожидает решения",
	ApprovalStatusApproved: "Согласовано",
	ApprovalStatusRejected: "Отклонено",
}

func (s ApprovalStatus) ToHuman() string {
	if human, exist := approvalStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

type TripType string

const (
	TripTypeOneWay    TripType = "one_way"
	TripTypeRoundTrip TripType = "round_trip"
	TripTypeMultiCity TripType = "multi_city"
)

func (t TripType) Validate() error {
	switch t {
	case TripTypeOneWay, TripTypeRoundTrip, TripTypeMultiCity, "":
		return nil
	}
	return ErrUnknownTripType
}

type PolicyStatus string

const (
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusArchived PolicyStatus = "archived"
)

// Уровни согласования. Первый уровень закрывают руководители,
// второй - финансовый контроль.
const (
	ApprovalLevelManager = 1
	ApprovalLevelFinance = 2
)

// ApproverRolesByLevel - роли, чьи активные членства назначаются
// согласующими на уровне. Для первого уровня администратор компании
// выступает запасным согласующим при отсутствии руководителей.
var ApproverRolesByLevel = map[int][]CompanyRole{
	ApprovalLevelManager: {CompanyRoleManager, CompanyRoleAdmin},
	ApprovalLevelFinance: {CompanyRoleFinance},
}
