package models

// События журнала аудита
const (
	AuditCompanyOnboarded       = "company_onboarded"
	AuditInvitationCreated      = "invitation_created"
	AuditInvitationAccepted     = "invitation_accepted"
	AuditTravelRequestSubmitted = "travel_request_submitted"
	AuditTravelRequestApproved  = "travel_request_approved"
	AuditTravelRequestRejected  = "travel_request_rejected"
	AuditTravelRequestCancelled = "travel_request_cancelled"
)
