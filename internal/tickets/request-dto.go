package tickets

type IssueTicketsRequest struct {
	TicketedEventID      string   `json:"ticketed_event_id" binding:"required,uuid"`
	SectorID             string   `json:"sector_id" binding:"required,uuid"`
	SeatID               *string  `json:"seat_id" binding:"omitempty,uuid"`
	SeatIDs              []string `json:"seat_ids" binding:"omitempty,dive,uuid"`
	TicketType           string   `json:"ticket_type" binding:"required,ticket_type"`
	ParticipantFirstName string   `json:"participant_first_name" binding:"omitempty,max=100"`
	ParticipantLastName  string   `json:"participant_last_name" binding:"omitempty,max=100"`
	Quantity             int      `json:"quantity" binding:"omitempty,min=1,max=100"`
	PaymentMethod        string   `json:"payment_method" binding:"omitempty,oneof=cash card"`
	PaymentReference     string   `json:"payment_reference" binding:"omitempty,max=255"`
	PaymentToken         string   `json:"payment_token" binding:"omitempty,max=255"`
	CustomerEmail        string   `json:"customer_email" binding:"omitempty,email"`
}

type CancelTicketRequest struct {
	ReasonCode string `json:"reason_code" binding:"required,max=16"`
	Refund     bool   `json:"refund"`
}

type ChangeParticipantRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}
